package biscuit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecryptChromiumValue_CBCRoundTrip(t *testing.T) {
	key := deriveCBCKey("peanuts", chromiumPBKDF2IterationsLinux)
	keys := chromiumKeySet{v10: &key}

	enc := encryptAESCBCForTest(t, "v10", key, []byte("hello"))
	plain, err := decryptChromiumValue(enc, keys, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}

func TestDecryptChromiumValue_CBCWrongKey(t *testing.T) {
	good := deriveCBCKey("peanuts", chromiumPBKDF2IterationsLinux)
	wrong := deriveCBCKey("walnuts", chromiumPBKDF2IterationsLinux)

	enc := encryptAESCBCForTest(t, "v10", good, []byte("hello"))
	plain, err := decryptChromiumValue(enc, chromiumKeySet{v10: &wrong}, 0)
	if err == nil {
		// CBC has no authentication; a wrong key must at least never
		// reproduce the real plaintext.
		assert.NotEqual(t, "hello", string(plain))
	} else {
		assert.ErrorIs(t, err, ErrMalformed)
	}
}

func TestDecryptChromiumValue_CBCTruncatedCiphertext(t *testing.T) {
	key := deriveCBCKey("peanuts", chromiumPBKDF2IterationsLinux)
	enc := encryptAESCBCForTest(t, "v10", key, []byte("hello"))

	_, err := decryptChromiumValue(enc[:len(enc)-1], chromiumKeySet{v10: &key}, 0)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecryptChromiumValue_V11UsesKeyringKey(t *testing.T) {
	v11 := deriveCBCKey("secret-from-keyring", chromiumPBKDF2IterationsLinux)
	keys := chromiumKeySet{v11: &v11}

	enc := encryptAESCBCForTest(t, "v11", v11, []byte("token=abc"))
	plain, err := decryptChromiumValue(enc, keys, 0)
	require.NoError(t, err)
	assert.Equal(t, "token=abc", string(plain))
}

func TestDecryptChromiumValue_CBCStripsHostHashPrefix(t *testing.T) {
	key := deriveCBCKey("pw", chromiumPBKDF2IterationsLinux)
	withHash := append(bytes.Repeat([]byte{0xAA}, 32), []byte("hello")...)
	enc := encryptAESCBCForTest(t, "v10", key, withHash)

	plain, err := decryptChromiumValue(enc, chromiumKeySet{v10: &key}, 30)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}

func TestDecryptChromiumValue_GCMRoundTrip(t *testing.T) {
	key := KeyMaterial{Algorithm: KeyAES256GCM, Secret: bytes.Repeat([]byte{0x11}, 32)}
	nonce := bytes.Repeat([]byte{0x22}, chromiumGCMNonceLen)

	enc := encryptAESGCMForTest(t, "v10", key, nonce, []byte("hello"))
	plain, err := decryptChromiumValue(enc, chromiumKeySet{gcm: &key}, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}

func TestDecryptChromiumValue_GCMTamperedTag(t *testing.T) {
	key := KeyMaterial{Algorithm: KeyAES256GCM, Secret: bytes.Repeat([]byte{0x11}, 32)}
	nonce := bytes.Repeat([]byte{0x22}, chromiumGCMNonceLen)

	enc := encryptAESGCMForTest(t, "v10", key, nonce, []byte("hello"))
	enc[len(enc)-1] ^= 0xFF

	_, err := decryptChromiumValue(enc, chromiumKeySet{gcm: &key}, 0)
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestDecryptChromiumValue_GCMWrongKeyIsAuthFailure(t *testing.T) {
	good := KeyMaterial{Algorithm: KeyAES256GCM, Secret: bytes.Repeat([]byte{0x11}, 32)}
	wrong := KeyMaterial{Algorithm: KeyAES256GCM, Secret: bytes.Repeat([]byte{0x99}, 32)}
	nonce := bytes.Repeat([]byte{0x22}, chromiumGCMNonceLen)

	enc := encryptAESGCMForTest(t, "v10", good, nonce, []byte("hello"))
	_, err := decryptChromiumValue(enc, chromiumKeySet{gcm: &wrong}, 0)
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestDecryptChromiumValue_GCMStripsHostHashPrefix(t *testing.T) {
	key := KeyMaterial{Algorithm: KeyAES256GCM, Secret: bytes.Repeat([]byte{0x11}, 32)}
	nonce := bytes.Repeat([]byte{0x22}, chromiumGCMNonceLen)
	withHash := append(bytes.Repeat([]byte{0xBB}, 32), []byte("hello")...)

	enc := encryptAESGCMForTest(t, "v10", key, nonce, withHash)
	plain, err := decryptChromiumValue(enc, chromiumKeySet{gcm: &key}, 24)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}

func TestDecryptChromiumValue_EmptyValueIsEmptyPlaintext(t *testing.T) {
	plain, err := decryptChromiumValue(nil, chromiumKeySet{}, 0)
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestDecryptChromiumValue_PrefixWithoutBody(t *testing.T) {
	key := KeyMaterial{Algorithm: KeyAES256GCM, Secret: bytes.Repeat([]byte{0x11}, 32)}

	// Prefix implies nonce+tag, but nothing follows.
	_, err := decryptChromiumValue([]byte("v10"), chromiumKeySet{gcm: &key}, 0)
	require.ErrorIs(t, err, ErrMalformed)

	cbc := deriveCBCKey("pw", chromiumPBKDF2IterationsLinux)
	_, err = decryptChromiumValue([]byte("v10x"), chromiumKeySet{v10: &cbc}, 0)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecryptChromiumValue_NoPrefixIsPlaintext(t *testing.T) {
	plain, err := decryptChromiumValue([]byte("legacy-plaintext"), chromiumKeySet{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "legacy-plaintext", string(plain))
}

func TestDecryptChromiumValue_V20NeedsAppBoundKey(t *testing.T) {
	key := KeyMaterial{Algorithm: KeyAES256GCM, Secret: bytes.Repeat([]byte{0x11}, 32)}
	_, err := decryptChromiumValue([]byte("v20abcdefghijklmnopqrstuvwxyz0123456789"), chromiumKeySet{gcm: &key}, 0)
	require.ErrorIs(t, err, ErrKeyUnavailable)
}

func TestDecryptChromiumValue_MissingKey(t *testing.T) {
	enc := encryptAESCBCForTest(t, "v11", deriveCBCKey("pw", 1), []byte("hello"))
	_, err := decryptChromiumValue(enc, chromiumKeySet{err: ErrKeyUnavailable}, 0)
	require.ErrorIs(t, err, ErrKeyUnavailable)
}

func TestDecodePlaintextValue_StripsLeadingControlBytes(t *testing.T) {
	val, err := decodePlaintextValue([]byte{0x01, 0x02, 'o', 'k'})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
}

func TestDecodePlaintextValue_RejectsInvalidUTF8(t *testing.T) {
	_, err := decodePlaintextValue([]byte{0xFF, 0xFE, 0xFD})
	require.ErrorIs(t, err, ErrMalformed)
}

func TestRemovePKCS7Padding_Invalid(t *testing.T) {
	_, err := removePKCS7Padding([]byte{1, 2, 3, 17})
	require.ErrorIs(t, err, ErrMalformed)

	_, err = removePKCS7Padding([]byte{2, 2, 3, 2})
	require.ErrorIs(t, err, ErrMalformed)
}
