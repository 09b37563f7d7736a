package biscuit

import (
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// createChromiumFixture creates a cookie database with the Chromium schema
// subset the reader consumes and returns its path.
func createChromiumFixture(t *testing.T, metaVersion string) (string, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cookies")
	db := openTestSQLite(t, path)
	mustExec(t, db, `CREATE TABLE meta(key TEXT PRIMARY KEY, value TEXT)`)
	mustExec(t, db, `INSERT INTO meta(key,value) VALUES('version',?)`, metaVersion)
	mustExec(t, db, `CREATE TABLE cookies(host_key TEXT, name TEXT, path TEXT, value TEXT, encrypted_value BLOB, expires_utc INTEGER, is_secure INTEGER, is_httponly INTEGER, samesite INTEGER)`)
	return path, db
}

func insertChromiumCookie(t *testing.T, db *sql.DB, host, name, value string, encrypted []byte, expiresUTC int64, secure, httpOnly, sameSite int) {
	t.Helper()
	mustExec(t, db,
		`INSERT INTO cookies(host_key,name,path,value,encrypted_value,expires_utc,is_secure,is_httponly,samesite) VALUES(?,?,?,?,?,?,?,?,?)`,
		host, name, "/", value, encrypted, expiresUTC, secure, httpOnly, sameSite,
	)
}

// createFirefoxFixture creates a cookies.sqlite with the moz_cookies schema
// subset the reader consumes.
func createFirefoxFixture(t *testing.T, dir string) (string, *sql.DB) {
	t.Helper()
	path := filepath.Join(dir, "cookies.sqlite")
	db := openTestSQLite(t, path)
	mustExec(t, db, `CREATE TABLE moz_cookies(host TEXT, name TEXT, value TEXT, path TEXT, expiry INTEGER, isSecure INTEGER, isHttpOnly INTEGER, sameSite INTEGER)`)
	return path, db
}

func insertFirefoxCookie(t *testing.T, db *sql.DB, host, name, value string, expiry int64, secure, httpOnly, sameSite int) {
	t.Helper()
	mustExec(t, db,
		`INSERT INTO moz_cookies(host,name,value,path,expiry,isSecure,isHttpOnly,sameSite) VALUES(?,?,?,?,?,?,?,?)`,
		host, name, value, "/", expiry, secure, httpOnly, sameSite,
	)
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatal(err)
	}
}

func pkcs7Pad(t *testing.T, b []byte) []byte {
	t.Helper()
	paddingLen := aes.BlockSize - (len(b) % aes.BlockSize)
	if paddingLen == 0 {
		paddingLen = aes.BlockSize
	}
	out := make([]byte, 0, len(b)+paddingLen)
	out = append(out, b...)
	for i := 0; i < paddingLen; i++ {
		out = append(out, byte(paddingLen))
	}
	return out
}

func encryptAESCBCForTest(t *testing.T, prefix string, key KeyMaterial, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key.Secret)
	if err != nil {
		t.Fatal(err)
	}
	padded := pkcs7Pad(t, plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(chromiumAESCBCIV)).CryptBlocks(ciphertext, padded)
	return append([]byte(prefix), ciphertext...)
}

func encryptAESGCMForTest(t *testing.T, prefix string, key KeyMaterial, nonce []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key.Secret)
	if err != nil {
		t.Fatal(err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	ciphertextAndTag := aesgcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(prefix)+len(nonce)+len(ciphertextAndTag))
	out = append(out, []byte(prefix)...)
	out = append(out, nonce...)
	out = append(out, ciphertextAndTag...)
	return out
}
