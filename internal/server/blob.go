package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BlobStore is durable, content-addressed-ish photo storage. Reads are
// eventually consistent after a write, so SignedURL may fail transiently for
// a path that was just stored.
type BlobStore interface {
	Put(path string, data []byte) error
	SignedURL(path string, ttl time.Duration) (string, error)
}

var errBlobNotFound = errors.New("blob not found")

type diskBlobStore struct {
	root   string
	secret []byte
}

func newDiskBlobStore(root, secret string) *diskBlobStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte("snaphunt-dev-secret")
		}
	}
	return &diskBlobStore{root: root, secret: key}
}

func (d *diskBlobStore) Put(path string, data []byte) error {
	clean, err := cleanBlobPath(path)
	if err != nil {
		return err
	}
	full := filepath.Join(d.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (d *diskBlobStore) SignedURL(path string, ttl time.Duration) (string, error) {
	clean, err := cleanBlobPath(path)
	if err != nil {
		return "", err
	}
	full := filepath.Join(d.root, filepath.FromSlash(clean))
	if _, err := os.Stat(full); err != nil {
		return "", errBlobNotFound
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("/blobs/%s?exp=%d&sig=%s", clean, expires, d.sign(clean, expires)), nil
}

// Open returns the blob bytes if the signature is valid and unexpired.
func (d *diskBlobStore) Open(path string, expires int64, sig string) ([]byte, error) {
	clean, err := cleanBlobPath(path)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > expires {
		return nil, errors.New("signed url expired")
	}
	expected := d.sign(clean, expires)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return nil, errors.New("invalid signature")
	}
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, errBlobNotFound
	}
	return data, nil
}

func (d *diskBlobStore) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, d.secret)
	fmt.Fprintf(mac, "%s:%d", path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// cleanBlobPath normalizes a slash path and rejects any input carrying a ".."
// segment. The check runs on the raw input, before Clean can swallow the
// segment, and is per segment so filenames with consecutive dots stay legal.
func cleanBlobPath(path string) (string, error) {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return "", errors.New("invalid blob path")
		}
	}
	clean := strings.Trim(filepath.ToSlash(filepath.Clean("/"+path)), "/")
	if clean == "" || clean == "." {
		return "", errors.New("invalid blob path")
	}
	return clean, nil
}

// signedURLWithRetry tolerates read-after-write lag with a bounded number of
// fixed-delay retries. A false result means no preview is available; callers
// must not treat it as a hard failure.
func signedURLWithRetry(store BlobStore, path string, ttl time.Duration, retries int, delay time.Duration) (string, bool) {
	for attempt := 0; ; attempt++ {
		url, err := store.SignedURL(path, ttl)
		if err == nil {
			return url, true
		}
		if attempt >= retries {
			return "", false
		}
		time.Sleep(delay)
	}
}

func parseBlobQuery(expRaw, sig string) (int64, string, bool) {
	expires, err := strconv.ParseInt(expRaw, 10, 64)
	if err != nil || sig == "" {
		return 0, "", false
	}
	return expires, sig, true
}
