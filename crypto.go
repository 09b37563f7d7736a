package biscuit

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // Chromium derives its cookie key with PBKDF2-SHA1 ("saltysalt"); replicated for compatibility, not strength.
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	chromiumPBKDF2Salt   = "saltysalt"
	chromiumAESCBCIV     = "                " // 16 spaces
	chromiumAESCBCKeyLen = 16

	chromiumPBKDF2IterationsLinux = 1
	chromiumPBKDF2IterationsMacOS = 1003

	chromiumVersionPrefixLen = 3
	chromiumGCMNonceLen      = 12
	chromiumGCMTagLen        = 16
)

// deriveCBCKey replicates Chromium's PBKDF2 parameters for the legacy
// v10/v11 AES-128-CBC scheme.
func deriveCBCKey(password string, iterations int) KeyMaterial {
	secret := pbkdf2.Key([]byte(password), []byte(chromiumPBKDF2Salt), iterations, chromiumAESCBCKeyLen, sha1.New)
	return KeyMaterial{Algorithm: KeyAES128CBC, Secret: secret}
}

// chromiumKeySet holds whatever key material the platform key provider could
// produce for one extraction pass. Nil fields mean the corresponding
// ciphertext versions cannot be decrypted; err carries the reason once.
type chromiumKeySet struct {
	v10 *KeyMaterial
	v11 *KeyMaterial
	gcm *KeyMaterial

	// unprotect handles raw OS-protected blobs without a version prefix
	// (DPAPI-era values). Nil outside Windows.
	unprotect func([]byte) ([]byte, error)

	err error
}

// dpapiBlobPrefix is the header of a raw CryptProtectData blob
// (0x01000000D08C9DDF0115D1118C7A00C04FC297EB).
var dpapiBlobPrefix = []byte{
	1, 0, 0, 0, 208, 140, 157, 223, 1, 21, 209, 17, 140, 122, 0, 192, 79, 194, 151, 235,
}

// decryptChromiumValue recovers the plaintext of one encrypted_value column.
// An empty stored value is an empty plaintext, not an error. metaVersion is
// the cookie database's meta.version row; from 24 on, Chromium prepends a
// 32-byte hash of the host key to the plaintext.
func decryptChromiumValue(encrypted []byte, keys chromiumKeySet, metaVersion int64) ([]byte, error) {
	if len(encrypted) == 0 {
		return nil, nil
	}

	if !hasChromiumVersionPrefix(encrypted) {
		if keys.unprotect != nil && bytes.HasPrefix(encrypted, dpapiBlobPrefix) {
			plain, err := keys.unprotect(encrypted)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
			}
			return stripHostHashPrefix(plain, metaVersion), nil
		}
		// Pre-encryption era rows store the plaintext in encrypted_value.
		return bytes.Clone(encrypted), nil
	}

	prefix := string(encrypted[:chromiumVersionPrefixLen])
	payload := encrypted[chromiumVersionPrefixLen:]

	switch prefix {
	case "v10":
		if keys.gcm != nil {
			return decryptAES256GCM(payload, *keys.gcm, metaVersion)
		}
		return decryptAESCBC(payload, keys.v10, keys.err, metaVersion)
	case "v11":
		return decryptAESCBC(payload, keys.v11, keys.err, metaVersion)
	case "v20":
		// App-bound encryption; the wrapping key is not reachable from here.
		return nil, fmt.Errorf("%w: app-bound (v20) value", ErrKeyUnavailable)
	default:
		return nil, fmt.Errorf("%w: unknown version prefix %q", ErrMalformed, prefix)
	}
}

func decryptAESCBC(ciphertext []byte, key *KeyMaterial, keyErr error, metaVersion int64) ([]byte, error) {
	if key == nil {
		if keyErr != nil {
			return nil, keyErr
		}
		return nil, ErrKeyUnavailable
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not whole blocks (%d bytes)", ErrMalformed, len(ciphertext))
	}

	block, err := aes.NewCipher(key.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, []byte(chromiumAESCBCIV)).CryptBlocks(out, ciphertext)

	out, err = removePKCS7Padding(out)
	if err != nil {
		return nil, err
	}
	return stripHostHashPrefix(out, metaVersion), nil
}

func decryptAES256GCM(payload []byte, key KeyMaterial, metaVersion int64) ([]byte, error) {
	if len(payload) < chromiumGCMNonceLen+chromiumGCMTagLen {
		return nil, fmt.Errorf("%w: %d bytes cannot hold nonce and tag", ErrMalformed, len(payload))
	}
	nonce := payload[:chromiumGCMNonceLen]
	ciphertextAndTag := payload[chromiumGCMNonceLen:]

	block, err := aes.NewCipher(key.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	plain, err := aesgcm.Open(nil, nonce, ciphertextAndTag, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return stripHostHashPrefix(plain, metaVersion), nil
}

func stripHostHashPrefix(plain []byte, metaVersion int64) []byte {
	if metaVersion >= 24 && len(plain) >= 32 {
		return plain[32:]
	}
	return plain
}

func hasChromiumVersionPrefix(b []byte) bool {
	if len(b) < chromiumVersionPrefixLen {
		return false
	}
	return b[0] == 'v' && isDigit(b[1]) && isDigit(b[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func removePKCS7Padding(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	paddingLen := int(b[len(b)-1])
	if paddingLen <= 0 || paddingLen > aes.BlockSize || paddingLen > len(b) {
		return nil, fmt.Errorf("%w: invalid padding length %d", ErrMalformed, paddingLen)
	}
	for _, p := range b[len(b)-paddingLen:] {
		if int(p) != paddingLen {
			return nil, fmt.Errorf("%w: invalid padding bytes", ErrMalformed)
		}
	}
	return b[:len(b)-paddingLen], nil
}

// decodePlaintextValue turns decrypted bytes into a cookie value string.
// Chromium occasionally leaves control bytes ahead of the value.
func decodePlaintextValue(b []byte) (string, error) {
	i := 0
	for i < len(b) && b[i] < 0x20 {
		i++
	}
	b = b[i:]
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrMalformed)
	}
	return string(b), nil
}
