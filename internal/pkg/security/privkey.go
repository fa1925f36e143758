package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptPrivkey 托管私钥静态加密：chacha20poly1305，nonce 前置，base64 输出。
// encryptionKey 为 64 位 hex（32 字节）。
func EncryptPrivkey(privkeyHex, encryptionKey string) (string, error) {
	key, err := hex.DecodeString(encryptionKey)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return "", errors.New("invalid privkey encryption key")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(privkeyHex), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptPrivkey 解出托管私钥 hex
func DecryptPrivkey(encrypted, encryptionKey string) (string, error) {
	key, err := hex.DecodeString(encryptionKey)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return "", errors.New("invalid privkey encryption key")
	}

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", errors.New("malformed encrypted privkey")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", errors.New("malformed encrypted privkey")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.New("failed to decrypt privkey")
	}
	return string(plain), nil
}
