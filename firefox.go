package biscuit

import (
	"context"
	"database/sql"
	"time"
)

const firefoxSelectCookies = `SELECT host, name, value, path, expiry, isSecure, isHttpOnly, sameSite FROM moz_cookies`

// Firefox's expiry column holds seconds since the Unix epoch in current
// schemas and microseconds in some older ones. Anything past this bound
// cannot be a plausible second count.
const firefoxMicrosecondThreshold = int64(1) << 37 // year ~6325 in seconds

type firefoxRow struct {
	host     string
	name     string
	value    string
	path     string
	expiry   int64
	isSecure bool
	httpOnly bool
	sameSite sql.NullInt64
}

// readFirefoxTarget streams moz_cookies. Firefox stores values in plaintext,
// so no key material is involved.
func readFirefoxTarget(ctx context.Context, target BrowserTarget, bypassLock bool) ([]Cookie, []RowError, error) {
	db, err := openCookieDB(ctx, target.DatabasePath, bypassLock)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, firefoxSelectCookies)
	if err != nil {
		return nil, nil, classifyStoreError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []Cookie
	for rows.Next() {
		var r firefoxRow
		var expiry, secure, httpOnly sql.NullInt64
		if err := rows.Scan(&r.host, &r.name, &r.value, &r.path, &expiry, &secure, &httpOnly, &r.sameSite); err != nil {
			return out, nil, classifyStoreError(err)
		}
		r.expiry = expiry.Int64
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.httpOnly = httpOnly.Valid && httpOnly.Int64 == 1

		c, ok := firefoxRowToCookie(target, r)
		if ok {
			out = append(out, c)
		}
	}
	if err := rows.Err(); err != nil {
		return out, nil, classifyStoreError(err)
	}
	return out, nil, nil
}

func firefoxRowToCookie(target BrowserTarget, r firefoxRow) (Cookie, bool) {
	if r.name == "" || r.host == "" {
		return Cookie{}, false
	}

	path := r.path
	if path == "" {
		path = "/"
	}

	var expires *time.Time
	if r.expiry > 0 {
		t := firefoxTimeToUnix(r.expiry)
		expires = &t
	}

	return Cookie{
		Domain:   r.host,
		Path:     path,
		Name:     r.name,
		Value:    r.value,
		Secure:   r.isSecure,
		HTTPOnly: r.httpOnly,
		SameSite: sameSiteFromInt(r.sameSite),
		Expires:  expires,
		Source: Source{
			Browser:   target.Browser,
			Profile:   target.Profile,
			StorePath: target.DatabasePath,
		},
	}, true
}

func firefoxTimeToUnix(expiry int64) time.Time {
	if expiry > firefoxMicrosecondThreshold {
		return time.Unix(0, expiry*1000).UTC()
	}
	return time.Unix(expiry, 0).UTC()
}
