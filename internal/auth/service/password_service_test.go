package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordService()

	hashed, err := svc.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotContains(t, hashed, "correct horse battery staple")

	assert.True(t, svc.Verify("correct horse battery staple", hashed))
	assert.False(t, svc.Verify("wrong password", hashed))
}

func TestPasswordService_SaltPerCall(t *testing.T) {
	svc := NewPasswordService()

	first, err := svc.Hash("same password")
	require.NoError(t, err)
	second, err := svc.Hash("same password")
	require.NoError(t, err)

	// The salt is generated per call, so equal passwords never share a hash.
	assert.NotEqual(t, first, second)
	assert.True(t, svc.Verify("same password", first))
	assert.True(t, svc.Verify("same password", second))
}

func TestPasswordService_CorruptHashIsFalse(t *testing.T) {
	svc := NewPasswordService()

	// A mangled stored hash is a mismatch, not an error surface.
	assert.False(t, svc.Verify("anything", "not-a-valid-hash"))
	assert.False(t, svc.Verify("anything", ""))
}
