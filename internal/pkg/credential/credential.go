package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// Codec hashes passwords for storage and checks candidates against stored digests.
type Codec interface {
	Hash(password string) (string, error)
	Verify(candidate, digest string) bool
}

// New returns the codec for scheme. An empty scheme selects sha256.
func New(scheme string, bcryptCost int) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeSHA256:
		return SHA256Codec{}, nil
	case SchemeBcrypt:
		return NewBcryptCodec(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// SHA256Codec stores the unsalted hex SHA-256 of the password.
// Existing user rows depend on this exact digest.
type SHA256Codec struct{}

func (SHA256Codec) Hash(password string) (string, error) {
	return sha256Hex(password), nil
}

func (SHA256Codec) Verify(candidate, digest string) bool {
	return constantTimeEqual(sha256Hex(candidate), digest)
}

// BcryptCodec hashes with bcrypt but still accepts legacy SHA-256 digests.
type BcryptCodec struct {
	cost int
}

func NewBcryptCodec(cost int) BcryptCodec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptCodec{cost: cost}
}

func (c BcryptCodec) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(hash), nil
}

func (c BcryptCodec) Verify(candidate, digest string) bool {
	if isLegacyDigest(digest) {
		return SHA256Codec{}.Verify(candidate, digest)
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate)) == nil
}

func sha256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isLegacyDigest(digest string) bool {
	if len(digest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
