package crypto

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncryptor_GenerateNewKey(t *testing.T) {
	// Test creating encryptor with empty key (generates new)
	enc, err := NewEncryptor("")
	require.NoError(t, err)
	assert.NotNil(t, enc)
	assert.NotNil(t, enc.identity)
	assert.NotNil(t, enc.recipient)
}

func TestNewEncryptor_WithProvidedKey(t *testing.T) {
	// Generate a key first
	key, err := GenerateKey()
	require.NoError(t, err)

	// Create encryptor with that key
	enc, err := NewEncryptor(key)
	require.NoError(t, err)
	assert.NotNil(t, enc)
}

func TestNewEncryptor_InvalidKey(t *testing.T) {
	_, err := NewEncryptor("invalid-key-format")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing identity")
}

func TestEncryptString_DecryptString_RoundTrip(t *testing.T) {
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	plaintext := "482913"

	ciphertext, err := enc.EncryptString(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := enc.DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncrypt_DifferentOutputEachTime(t *testing.T) {
	// Encryption should produce different ciphertext each time (nonce/IV)
	enc, err := NewEncryptor("")
	require.NoError(t, err)

	plaintext := []byte("same data")

	ciphertext1, err := enc.Encrypt(plaintext)
	require.NoError(t, err)

	ciphertext2, err := enc.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, ciphertext1, ciphertext2)
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc1, err := NewEncryptor("")
	require.NoError(t, err)

	enc2, err := NewEncryptor("")
	require.NoError(t, err)

	ciphertext, err := enc1.EncryptString("secret")
	require.NoError(t, err)

	_, err = enc2.DecryptString(ciphertext)
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	token1, err := GenerateToken(32)
	require.NoError(t, err)
	assert.NotEmpty(t, token1)

	token2, err := GenerateToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)
}

func TestGenerateNumericCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code, err := GenerateNumericCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)

		seen[code] = true
	}

	// 200 draws from a 900000-value space should essentially never collide
	// down to a handful of values.
	assert.Greater(t, len(seen), 150)
}
