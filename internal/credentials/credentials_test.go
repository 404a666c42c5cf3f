package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "huddle/pkg/errors"
)

func TestHashAndCompare(t *testing.T) {
	v := NewBcryptVerifier()

	hash, err := v.Hash("s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, v.Compare(hash, "s3cret"))

	err = v.Compare(hash, "wrong")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthenticated))
}

func TestCompareAgainstGarbageHash(t *testing.T) {
	v := NewBcryptVerifier()
	assert.Error(t, v.Compare("not-a-bcrypt-hash", "anything"))
}
