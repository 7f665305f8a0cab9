package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	ciphertext, err := Encrypt([]byte("super-secret-access-token"), key)
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret-access-token", ciphertext)

	plaintext, err := Decrypt(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, "super-secret-access-token", plaintext)
}

func TestDecryptWithWrongKey(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	wrongKey := []byte("fedcba9876543210fedcba9876543210")

	ciphertext, err := Encrypt([]byte("token"), key)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, wrongKey)
	assert.Error(t, err)
}

func TestDecryptMalformedInput(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	_, err := Decrypt("not base64!!!", key)
	assert.Error(t, err)

	_, err = Decrypt("dG9vc2hvcnQ=", key)
	assert.Error(t, err)
}
