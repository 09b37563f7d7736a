//go:build linux

package biscuit

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	dbuskeyring "github.com/ppacher/go-dbus-keyring"
	"github.com/zalando/go-keyring"
)

// chromiumKeysForTarget builds the key set for one extraction pass.
//
// On Linux v10 values are encrypted with a key derived from the fixed
// "peanuts" password, so they always decrypt. v11 values need the Safe
// Storage password from the Secret Service; when it cannot be obtained only
// those rows fail.
func chromiumKeysForTarget(vendor chromiumVendor, _ BrowserTarget, timeout time.Duration) chromiumKeySet {
	v10 := deriveCBCKey("peanuts", chromiumPBKDF2IterationsLinux)
	ks := chromiumKeySet{v10: &v10}

	password, err := linuxSafeStoragePassword(vendor, timeout)
	if err != nil {
		ks.err = fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
		return ks
	}
	v11 := deriveCBCKey(password, chromiumPBKDF2IterationsLinux)
	ks.v11 = &v11
	return ks
}

func linuxSafeStoragePassword(vendor chromiumVendor, timeout time.Duration) (string, error) {
	// Escape hatch for deterministic tooling/CI.
	if override := strings.TrimSpace(os.Getenv(envKeySafeStoragePassword(vendor.browser))); override != "" {
		return override, nil
	}

	return callWithTimeout(timeout, func() (string, error) {
		if pw, err := keyring.Get(vendor.safeStorageService, vendor.safeStorageAccount); err == nil && strings.TrimSpace(pw) != "" {
			return strings.TrimSpace(pw), nil
		}
		// The browser stores the secret under its own label rather than a
		// service/account pair, which the high-level lookup can miss. Scan
		// the default collection directly.
		return linuxSecretServiceScan(vendor.safeStorageService)
	})
}

// linuxSecretServiceScan walks the default Secret Service collection over
// D-Bus looking for the vendor's Safe Storage item by label.
func linuxSecretServiceScan(label string) (string, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return "", err
	}

	svc, err := dbuskeyring.GetSecretService(conn)
	if err != nil {
		return "", err
	}
	session, err := svc.OpenSession()
	if err != nil {
		return "", err
	}
	defer func() { _ = session.Close() }()

	collection, err := svc.GetDefaultCollection()
	if err != nil {
		return "", err
	}
	items, err := collection.GetAllItems()
	if err != nil {
		return "", err
	}

	for _, item := range items {
		itemLabel, err := item.GetLabel()
		if err != nil || itemLabel != label {
			continue
		}
		secret, err := item.GetSecret(session.Path())
		if err != nil {
			return "", err
		}
		pw := strings.TrimSpace(string(secret.Value))
		if pw == "" {
			continue
		}
		return pw, nil
	}
	return "", fmt.Errorf("no %q item in the default keyring collection", label)
}

// callWithTimeout bounds a credential-store lookup. The Secret Service may
// pop an unlock prompt and never return.
func callWithTimeout(timeout time.Duration, fn func() (string, error)) (string, error) {
	type outcome struct {
		pw  string
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		pw, err := fn()
		ch <- outcome{pw: pw, err: err}
	}()
	select {
	case o := <-ch:
		return o.pw, o.err
	case <-time.After(timeout):
		return "", errors.New("timed out waiting for the keyring")
	}
}

func envKeySafeStoragePassword(b Browser) string {
	//nolint:exhaustive // Only Chromium-family browsers map to Safe Storage env overrides.
	switch b {
	case BrowserChrome:
		return "BISCUIT_CHROME_SAFE_STORAGE_PASSWORD"
	case BrowserChromium:
		return "BISCUIT_CHROMIUM_SAFE_STORAGE_PASSWORD"
	case BrowserEdge:
		return "BISCUIT_EDGE_SAFE_STORAGE_PASSWORD"
	case BrowserBrave:
		return "BISCUIT_BRAVE_SAFE_STORAGE_PASSWORD"
	case BrowserVivaldi:
		return "BISCUIT_VIVALDI_SAFE_STORAGE_PASSWORD"
	case BrowserOpera:
		return "BISCUIT_OPERA_SAFE_STORAGE_PASSWORD"
	default:
		return "BISCUIT_SAFE_STORAGE_PASSWORD"
	}
}
