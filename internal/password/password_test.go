package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("salainen")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "salainen", hash)

	assert.True(t, Verify("salainen", hash))
	assert.False(t, Verify("wrong", hash))
	assert.False(t, Verify("salainen", "not-a-hash"))
}
