// Package cryptox implements the symmetric credential cipher. Credentials
// travel through the system as encrypted blobs and are decrypted only at the
// point of use, so the journal account password is never persisted in
// plaintext anywhere.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/scrypt"
)

var (
	// ErrMalformedBlob means the input is not in base64(iv):base64(ct) form.
	ErrMalformedBlob = errors.New("malformed encrypted blob")
	// ErrDecryptionFailed covers wrong key, corrupted ciphertext and bad padding.
	ErrDecryptionFailed = errors.New("failed to decrypt data")
)

// scrypt parameters matching the deployment's existing key derivation.
const (
	keySalt  = "salt"
	scryptN  = 16384
	scryptR  = 8
	scryptP  = 1
	keyBytes = 32
)

// Cipher encrypts and decrypts short strings with AES-256-CBC. The key is
// derived from the configured secret once and cached for the process
// lifetime; the raw key is never exposed.
type Cipher struct {
	secret string

	once   sync.Once
	key    []byte
	keyErr error
}

func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is required")
	}
	return &Cipher{secret: secret}, nil
}

func (c *Cipher) deriveKey() ([]byte, error) {
	c.once.Do(func() {
		c.key, c.keyErr = scrypt.Key([]byte(c.secret), []byte(keySalt), scryptN, scryptR, scryptP, keyBytes)
	})
	return c.key, c.keyErr
}

// Encrypt returns base64(iv) + ":" + base64(ciphertext). A fresh random IV is
// drawn per call, so two encryptions of the same plaintext differ.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	key, err := c.deriveKey()
	if err != nil {
		return "", fmt.Errorf("key derivation failed: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return base64.StdEncoding.EncodeToString(iv) + ":" + base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt inverts Encrypt. A blob without the IV separator is rejected with
// ErrMalformedBlob; any cipher-level failure surfaces as ErrDecryptionFailed.
func (c *Cipher) Decrypt(blob string) (string, error) {
	parts := strings.SplitN(blob, ":", 2)
	if len(parts) != 2 {
		return "", ErrMalformedBlob
	}

	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedBlob
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformedBlob
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrDecryptionFailed
	}

	key, err := c.deriveKey()
	if err != nil {
		return "", fmt.Errorf("key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
