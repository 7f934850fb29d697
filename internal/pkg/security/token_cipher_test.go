package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92"

func TestTokenCipherRoundTrip(t *testing.T) {
	cipher, err := NewTokenCipher(testKeyHex)
	require.NoError(t, err)

	cases := []string{
		"x",
		"ya29.a0AfH6SMBx",
		"带中文的令牌内容",
		strings.Repeat("long-oauth-token-", 100), // 1700 字符
	}
	for _, plaintext := range cases {
		encrypted, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)
		require.NotEqual(t, plaintext, encrypted)

		decrypted, err := cipher.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestTokenCipherNonDeterministic(t *testing.T) {
	cipher, err := NewTokenCipher(testKeyHex)
	require.NoError(t, err)

	first, err := cipher.Encrypt("same-token")
	require.NoError(t, err)
	second, err := cipher.Encrypt("same-token")
	require.NoError(t, err)

	// 随机 nonce，相同明文两次加密结果必须不同
	assert.NotEqual(t, first, second)

	d1, err := cipher.Decrypt(first)
	require.NoError(t, err)
	d2, err := cipher.Decrypt(second)
	require.NoError(t, err)
	assert.Equal(t, "same-token", d1)
	assert.Equal(t, "same-token", d2)
}

func TestTokenCipherRejectsBadKey(t *testing.T) {
	_, err := NewTokenCipher("not-hex")
	assert.Error(t, err)

	_, err = NewTokenCipher("abcd")
	assert.Error(t, err)
}

func TestTokenCipherRejectsCorruptCiphertext(t *testing.T) {
	cipher, err := NewTokenCipher(testKeyHex)
	require.NoError(t, err)

	_, err = cipher.Decrypt("!!not-base64!!")
	assert.Error(t, err)

	_, err = cipher.Decrypt("c2hvcnQ=") // 合法 base64 但短于 nonce
	assert.Error(t, err)
}
