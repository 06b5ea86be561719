// AngelaMos | 2026
// security_test.go

package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	other, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ per hash")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	ok, err := VerifyPassword("secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("secret124", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("secret123", "not-a-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("secret123", "$bcrypt$v=19$m=1,t=1,p=1$aaaa$bbbb")
	assert.ErrorContains(t, err, "unsupported algorithm")
}

func TestVerifyPasswordWithRehash(t *testing.T) {
	t.Run("current params need no rehash", func(t *testing.T) {
		hash, err := HashPassword("secret123")
		require.NoError(t, err)

		ok, newHash, err := VerifyPasswordWithRehash("secret123", hash)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, newHash)
	})

	t.Run("outdated params are upgraded", func(t *testing.T) {
		salt := []byte("0123456789abcdef")
		key := argon2.IDKey([]byte("secret123"), salt, 2, 32*1024, 2, argonKeyLen)
		legacy := fmt.Sprintf(
			"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2.Version, 32*1024, 2, 2,
			base64.RawStdEncoding.EncodeToString(salt),
			base64.RawStdEncoding.EncodeToString(key),
		)

		ok, newHash, err := VerifyPasswordWithRehash("secret123", legacy)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NotEmpty(t, newHash)
		assert.False(t, needsRehash(newHash))

		ok, err = VerifyPassword("secret123", newHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password never rehashes", func(t *testing.T) {
		hash, err := HashPassword("secret123")
		require.NoError(t, err)

		ok, newHash, err := VerifyPasswordWithRehash("nope", hash)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, newHash)
	})
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	ok, _, err := VerifyPasswordTimingSafe("dummy_password_for_timing_attack_prevention", nil)
	require.NoError(t, err)
	assert.False(t, ok, "missing hash must never verify")

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)

	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	ok, _, err = VerifyPasswordTimingSafe("secret123", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("x")
	require.NoError(t, err)
	assert.False(t, needsRehash(hash))
	assert.True(t, needsRehash(strings.Replace(hash, "p=4", "p=2", 1)))
	assert.True(t, needsRehash("garbage"))
}
