package biscuit

import "time"

// Browser identifies a cookie source.
type Browser string

const (
	// BrowserChrome is Google Chrome.
	BrowserChrome Browser = "chrome"
	// BrowserChromium is Chromium.
	BrowserChromium Browser = "chromium"
	// BrowserEdge is Microsoft Edge.
	BrowserEdge Browser = "edge"
	// BrowserBrave is Brave Browser.
	BrowserBrave Browser = "brave"
	// BrowserVivaldi is Vivaldi.
	BrowserVivaldi Browser = "vivaldi"
	// BrowserOpera is Opera.
	BrowserOpera Browser = "opera"

	// BrowserFirefox is Mozilla Firefox.
	BrowserFirefox Browser = "firefox"
)

// IsChromiumFamily reports whether b stores cookies in the Chromium schema
// with encrypted values.
func (b Browser) IsChromiumFamily() bool {
	switch b {
	case BrowserChrome, BrowserChromium, BrowserEdge, BrowserBrave, BrowserVivaldi, BrowserOpera:
		return true
	default:
		return false
	}
}

// SameSite is the cookie SameSite attribute. Browsers encode it differently
// or omit it; values that cannot be mapped stay SameSiteUnspecified.
type SameSite string

const (
	// SameSiteUnspecified means the source row carried no usable SameSite value.
	SameSiteUnspecified SameSite = ""
	// SameSiteNone is SameSite=None.
	SameSiteNone SameSite = "None"
	// SameSiteLax is SameSite=Lax.
	SameSiteLax SameSite = "Lax"
	// SameSiteStrict is SameSite=Strict.
	SameSiteStrict SameSite = "Strict"
)

// Source describes where a cookie came from.
type Source struct {
	Browser   Browser
	Profile   string
	StorePath string
}

// Cookie is a canonical cookie record. Value is always plaintext; rows whose
// values cannot be decrypted never become Cookies.
type Cookie struct {
	// Domain keeps the stored leading dot verbatim: ".example.com" applies to
	// the host and all subdomains per the Netscape convention.
	Domain   string
	Path     string
	Name     string
	Value    string
	Secure   bool
	HTTPOnly bool
	SameSite SameSite

	// Expires is nil for session cookies.
	Expires *time.Time

	Source Source
}

// BrowserTarget is a resolved cookie store. Constructed by the store locator,
// immutable afterwards.
type BrowserTarget struct {
	Browser Browser
	Profile string

	// DatabasePath is the cookie SQLite database.
	DatabasePath string

	// UserDataDir is the directory holding the Local State file for
	// Chromium-family browsers; empty for Firefox.
	UserDataDir string
}

// KeyAlgorithm tags KeyMaterial with the cipher it feeds.
type KeyAlgorithm string

const (
	// KeyAES128CBC keys decrypt the legacy v10/v11 ciphertexts.
	KeyAES128CBC KeyAlgorithm = "aes-128-cbc"
	// KeyAES256GCM keys decrypt the AEAD-tagged ciphertexts.
	KeyAES256GCM KeyAlgorithm = "aes-256-gcm"
)

// KeyMaterial is a symmetric cookie-decryption key. It is derived fresh per
// extraction and must not be logged or persisted.
type KeyMaterial struct {
	Algorithm KeyAlgorithm
	Secret    []byte
}

// SourceSpec selects one browser store to extract from.
type SourceSpec struct {
	Browser Browser

	// DatabasePath, when set, bypasses default-location search entirely.
	// Useful for inspecting exported or copied database files.
	DatabasePath string

	// Profile selects a profile by name or directory. Empty means all
	// discoverable profiles of the browser.
	Profile string
}

// Request configures an extraction run.
type Request struct {
	Sources []SourceSpec

	// Hosts filters cookies by cookie-domain-matching semantics.
	// Empty means no filter.
	Hosts []string

	// BypassLock opens databases ignoring the browser's file lock. Unsafe
	// while the browser is writing: reads may observe a torn page and fail
	// with ErrCorrupt. The source file is never written to either way.
	BypassLock bool

	// Timeout bounds OS helper calls (keychain, keyring). Zero means a
	// 3 second default. Database reads are not subject to it.
	Timeout time.Duration
}

// Result is returned by Extract. Failures scoped to a row or a source are
// accumulated here instead of aborting the other sources.
type Result struct {
	Cookies []Cookie

	SourceErrors []SourceError
	RowErrors    []RowError
}

// Format selects a serialization format.
type Format string

const (
	// FormatNetscape is the cookies.txt format understood by curl and wget.
	FormatNetscape Format = "netscape"
	// FormatHTTPieSession mirrors HTTPie's session file. The schema is
	// undocumented upstream and tracked on a best-effort basis.
	FormatHTTPieSession Format = "httpie-session"
)
