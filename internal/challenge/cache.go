package challenge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheTTL is how long a solved credential stays usable. The gate rotates
// sessions on roughly this horizon.
const cacheTTL = time.Hour

// Cache is a single-slot credential store backed by one file. The file's
// mtime is the freshness clock; entries older than the TTL are reported as
// absent, never returned stale.
type Cache struct {
	path      string
	encryptor *Encryptor
	now       func() time.Time
}

// NewCache creates a cache at path. A non-empty passphrase encrypts the
// slot at rest.
func NewCache(path, passphrase string) *Cache {
	return &Cache{
		path:      path,
		encryptor: NewEncryptor(passphrase),
		now:       time.Now,
	}
}

// Load returns the cached credential and true if a fresh entry exists.
// A missing file and an expired entry are the same case: absent.
func (c *Cache) Load() (Credential, bool, error) {
	info, err := os.Stat(c.path)
	if os.IsNotExist(err) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, fmt.Errorf("checking credential cache: %w", err)
	}
	if c.now().Sub(info.ModTime()) >= cacheTTL {
		return Credential{}, false, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return Credential{}, false, fmt.Errorf("reading credential cache: %w", err)
	}
	if c.encryptor != nil {
		data, err = c.encryptor.Decrypt(data)
		if err != nil {
			return Credential{}, false, fmt.Errorf("decrypting credential cache: %w", err)
		}
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, false, fmt.Errorf("parsing credential cache: %w", err)
	}
	if !cred.Valid() {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

// Save overwrites the slot unconditionally. Invalid credentials are
// rejected so a bad solve can never poison the cache.
func (c *Cache) Save(cred Credential) error {
	if !cred.Valid() {
		return fmt.Errorf("refusing to cache invalid credential")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}
	if c.encryptor != nil {
		data, err = c.encryptor.Encrypt(data)
		if err != nil {
			return fmt.Errorf("encrypting credential: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing credential cache: %w", err)
	}
	return nil
}
