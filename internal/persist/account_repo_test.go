package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	r := &AccountRepo{}
	assert.True(t, r.ValidatePassword(string(hash), "hunter2"))
	assert.False(t, r.ValidatePassword(string(hash), "hunter3"))
	assert.False(t, r.ValidatePassword("not-a-hash", "hunter2"))
}
