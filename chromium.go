package biscuit

import (
	"context"
	"database/sql"
	"time"
)

// Offset of the Unix epoch from the Windows FILETIME epoch (1601-01-01), in
// microseconds. Chromium stores cookie times as microseconds since 1601.
const windowsToUnixEpochMicros = int64(11644473600000000)

const chromiumSelectCookies = `SELECT host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_httponly, samesite FROM cookies`

type chromiumRow struct {
	hostKey        string
	name           string
	path           string
	value          string
	encryptedValue []byte
	expiresUTC     int64
	isSecure       bool
	isHTTPOnly     bool
	sameSite       sql.NullInt64
}

// readChromiumTarget streams the cookie table of one resolved store,
// decrypting and normalizing row by row. Row failures are collected and do
// not abort the rest of the table.
func readChromiumTarget(ctx context.Context, target BrowserTarget, keys chromiumKeySet, bypassLock bool) ([]Cookie, []RowError, error) {
	db, err := openCookieDB(ctx, target.DatabasePath, bypassLock)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = db.Close() }()

	schemaVersion := metaVersion(ctx, db)

	rows, err := db.QueryContext(ctx, chromiumSelectCookies)
	if err != nil {
		return nil, nil, classifyStoreError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []Cookie
	var rowErrs []RowError
	for rows.Next() {
		var r chromiumRow
		var expires, secure, httpOnly sql.NullInt64
		if err := rows.Scan(&r.hostKey, &r.name, &r.path, &r.value, &r.encryptedValue, &expires, &secure, &httpOnly, &r.sameSite); err != nil {
			return out, rowErrs, classifyStoreError(err)
		}
		r.expiresUTC = expires.Int64
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.isHTTPOnly = httpOnly.Valid && httpOnly.Int64 == 1

		c, rerr, ok := chromiumRowToCookie(target, r, schemaVersion, keys)
		if rerr != nil {
			rowErrs = append(rowErrs, *rerr)
			continue
		}
		if ok {
			out = append(out, c)
		}
	}
	if err := rows.Err(); err != nil {
		return out, rowErrs, classifyStoreError(err)
	}
	return out, rowErrs, nil
}

// chromiumRowToCookie normalizes one raw row. Rows without a name or host are
// structurally invalid and dropped; decryption failures are reported as row
// errors, never fabricated into records.
func chromiumRowToCookie(target BrowserTarget, r chromiumRow, schemaVersion int64, keys chromiumKeySet) (Cookie, *RowError, bool) {
	if r.name == "" || r.hostKey == "" {
		return Cookie{}, nil, false
	}

	value := r.value
	if value == "" && len(r.encryptedValue) > 0 {
		plain, err := decryptChromiumValue(r.encryptedValue, keys, schemaVersion)
		if err == nil {
			value, err = decodePlaintextValue(plain)
		}
		if err != nil {
			return Cookie{}, &RowError{
				Browser: target.Browser,
				Profile: target.Profile,
				Domain:  r.hostKey,
				Name:    r.name,
				Err:     err,
			}, false
		}
	}

	var expires *time.Time
	if r.expiresUTC != 0 {
		if t, ok := chromiumTimeToUnix(r.expiresUTC); ok {
			expires = &t
		}
	}

	path := r.path
	if path == "" {
		path = "/"
	}

	return Cookie{
		Domain:   r.hostKey,
		Path:     path,
		Name:     r.name,
		Value:    value,
		Secure:   r.isSecure,
		HTTPOnly: r.isHTTPOnly,
		SameSite: sameSiteFromInt(r.sameSite),
		Expires:  expires,
		Source: Source{
			Browser:   target.Browser,
			Profile:   target.Profile,
			StorePath: target.DatabasePath,
		},
	}, nil, true
}

// sameSiteFromInt maps the integer encodings shared by Chromium's samesite
// and Firefox's sameSite columns. Anything unmappable (Chromium uses -1 for
// unspecified) stays Unspecified rather than being inferred as None.
func sameSiteFromInt(v sql.NullInt64) SameSite {
	if !v.Valid {
		return SameSiteUnspecified
	}
	switch v.Int64 {
	case 0:
		return SameSiteNone
	case 1:
		return SameSiteLax
	case 2:
		return SameSiteStrict
	default:
		return SameSiteUnspecified
	}
}

// chromiumTimeToUnix converts microseconds since 1601-01-01 to a time.Time.
// Values at or before the Unix epoch mean "session cookie" in practice.
func chromiumTimeToUnix(chromeMicros int64) (time.Time, bool) {
	unixMicros := chromeMicros - windowsToUnixEpochMicros
	if unixMicros <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, unixMicros*1000).UTC(), true
}

func unixToChromiumTime(t time.Time) int64 {
	return t.UnixMicro() + windowsToUnixEpochMicros
}
