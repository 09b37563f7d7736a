package biscuit

import (
	"encoding/json"
	"fmt"
	"io"
)

// The HTTPie session file schema is undocumented; these shapes track the
// fields HTTPie 3.2 accepts when restoring a session. Field names follow the
// arguments of the requests library's create_cookie helper.
type httpieSession struct {
	Headers []httpieHeader `json:"headers"`
	Cookies []httpieCookie `json:"cookies"`
	Auth    httpieAuth     `json:"auth"`
}

type httpieHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type httpieAuth struct {
	Type     *string `json:"type"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type httpieCookie struct {
	Name       string         `json:"name"`
	Value      string         `json:"value"`
	Port       *int           `json:"port"`
	Domain     string         `json:"domain"`
	Path       string         `json:"path"`
	Secure     bool           `json:"secure"`
	Expires    *int64         `json:"expires"`
	Discard    bool           `json:"discard"`
	Comment    *string        `json:"comment"`
	CommentURL *string        `json:"comment_url"`
	Rest       map[string]any `json:"rest"`
	RFC2109    bool           `json:"rfc2109"`
}

// WriteHTTPieSession renders cookies as an HTTPie session file, suitable for
// the --session flag. Zero records yield a valid session with an empty
// cookies array.
func WriteHTTPieSession(w io.Writer, cookies []Cookie) error {
	session := httpieSession{
		Headers: []httpieHeader{},
		Cookies: make([]httpieCookie, 0, len(cookies)),
	}
	for _, c := range cookies {
		var expires *int64
		if c.Expires != nil {
			ts := c.Expires.Unix()
			expires = &ts
		}
		session.Cookies = append(session.Cookies, httpieCookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Path:    c.Path,
			Secure:  c.Secure,
			Expires: expires,
			Rest:    map[string]any{},
		})
	}

	enc := json.NewEncoder(w)
	return enc.Encode(session)
}

// Write serializes cookies in the requested format.
func Write(w io.Writer, format Format, cookies []Cookie) error {
	switch format {
	case FormatNetscape:
		return WriteNetscape(w, cookies)
	case FormatHTTPieSession:
		return WriteHTTPieSession(w, cookies)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
