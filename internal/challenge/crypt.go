package challenge

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 100000
	kdfKeySize    = 32 // AES-256
)

// Encryptor protects the credential cache at rest so a solved session
// token never sits on disk in the clear.
type Encryptor struct {
	key []byte
}

// NewEncryptor derives an AES key from the passphrase. An empty
// passphrase returns nil, which Encrypt/Decrypt treat as pass-through.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}
	salt := sha256.Sum256([]byte(passphrase + "ticketwatch-credential-salt"))
	key := pbkdf2.Key([]byte(passphrase), salt[:], kdfIterations, kdfKeySize, sha256.New)
	return &Encryptor{key: key}
}

// Encrypt seals plaintext with AES-GCM, prepending the nonce.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if e == nil {
		return plaintext, nil
	}
	gcm, err := e.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens data sealed by Encrypt.
func (e *Encryptor) Decrypt(data []byte) ([]byte, error) {
	if e == nil {
		return data, nil
	}
	gcm, err := e.aead()
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func (e *Encryptor) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
