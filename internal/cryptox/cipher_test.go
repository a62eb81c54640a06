package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	c, err := New("test-secret")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	for _, plaintext := range []string{
		"user@example.com",
		"hunter22",
		"",
		"exactly 16 bytes",
		strings.Repeat("long input ", 100),
		"unicode: ñ 日本語 🎉",
	} {
		blob, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.Contains(t, blob, ":")

		got, err := c.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptProducesFreshIV(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	first, err := c.Encrypt("same input")
	require.NoError(t, err)
	second, err := c.Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecryptMalformedBlob(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	for _, blob := range []string{
		"no separator here",
		"not-base64!:also-not-base64!",
		"dG9vc2hvcnQ=:dGVzdA==", // IV shorter than a block
	} {
		_, err := c.Decrypt(blob)
		assert.ErrorIs(t, err, ErrMalformedBlob, "blob: %q", blob)
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	right, err := New("right-secret")
	require.NoError(t, err)
	wrong, err := New("wrong-secret")
	require.NoError(t, err)

	blob, err := right.Encrypt("secret payload")
	require.NoError(t, err)

	_, err = wrong.Decrypt(blob)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	blob, err := c.Encrypt("some longer plaintext that spans blocks")
	require.NoError(t, err)

	parts := strings.SplitN(blob, ":", 2)
	_, err = c.Decrypt(parts[0] + ":dGVzdA==")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestPKCS7Padding(t *testing.T) {
	padded := pkcs7Pad([]byte("12345"), 16)
	assert.Len(t, padded, 16)
	assert.Equal(t, byte(11), padded[15])

	// Full block of input gains a whole padding block.
	padded = pkcs7Pad([]byte("0123456789abcdef"), 16)
	assert.Len(t, padded, 32)

	unpadded, err := pkcs7Unpad(padded, 16)
	assert.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef"), unpadded)

	_, err = pkcs7Unpad([]byte("bad"), 16)
	assert.Error(t, err)
}
