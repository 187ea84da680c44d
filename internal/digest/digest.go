package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Algo identifies a supported digest algorithm.
type Algo string

const (
	SHA1    Algo = "sha-1"
	SHA256  Algo = "sha-256"
	SHA512  Algo = "sha-512"
	SHA3256 Algo = "sha3-256"
)

// Default is used when the configuration does not name an algorithm.
const Default = SHA256

// Supported returns the registered algorithm names.
func Supported() []string {
	return []string{
		string(SHA1),
		string(SHA256),
		string(SHA512),
		string(SHA3256),
	}
}

// Parse maps a configuration value onto a registered algorithm.
func Parse(name string) (Algo, error) {
	switch a := Algo(strings.ToLower(name)); a {
	case SHA1, SHA256, SHA512, SHA3256:
		return a, nil
	}
	return Default, fmt.Errorf("unknown digest algorithm %q (supported: %s)",
		name, strings.Join(Supported(), ", "))
}

// New returns a fresh hash state for the algorithm.
func (a Algo) New() hash.Hash {
	switch a {
	case SHA1:
		return sha1.New()
	case SHA512:
		return sha512.New()
	case SHA3256:
		return sha3.New256()
	default:
		return sha256.New()
	}
}

// Size returns the digest length in bytes.
func (a Algo) Size() int {
	return a.New().Size()
}

// File streams the file at path through the algorithm and returns the
// digest as a lowercase hex string. The digest depends on byte content
// only, never on metadata. A read failure is returned to the caller;
// classifying it is the reconcile engine's job.
func File(a Algo, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := a.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes digests an in-memory buffer the same way File digests a file.
func Bytes(a Algo, data []byte) string {
	h := a.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
