package auth

import (
	"testing"

	"cliphub/config"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(cost int) *bcryptHasher {
	return NewBcryptHasher(&config.Config{
		Auth: &config.AuthConfig{BcryptCost: cost},
	}).(*bcryptHasher)
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)

	password := "secret123"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)
	password := "secret123"

	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	// Test correct password
	assert.True(t, hasher.Check(password, hash))

	// Test incorrect password
	assert.False(t, hasher.Check("wrong-password", hash))

	// Test empty password
	assert.False(t, hasher.Check("", hash))

	// Test with invalid hash: Check never errors, it returns false
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_DistinctPlaintextsNeverMatch(t *testing.T) {
	hasher := newTestHasher(bcrypt.MinCost)

	hashA, err := hasher.Hash("plaintext-a")
	assert.NoError(t, err)
	hashB, err := hasher.Hash("plaintext-b")
	assert.NoError(t, err)

	assert.False(t, hasher.Check("plaintext-a", hashB))
	assert.False(t, hasher.Check("plaintext-b", hashA))
}

func TestBcryptHasher_ConfiguredCost(t *testing.T) {
	customCost := 6 // Lower cost for faster testing
	hasher := newTestHasher(customCost)

	hash, err := hasher.Hash("secret123")
	assert.NoError(t, err)

	// Verify the hash uses the configured cost
	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, customCost, cost)
}

func TestBcryptHasher_FallsBackToDefaultCost(t *testing.T) {
	// Out-of-range cost values fall back to bcrypt's default.
	hasher := NewBcryptHasher(&config.Config{}).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)

	hasher = newTestHasher(100)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
