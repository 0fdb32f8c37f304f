package cryptox

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetPepper("test-pepper")
	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple", "password123"},
		{"symbols", "P@ssw0rd!#$%^&*()"},
		{"long", strings.Repeat("a", 100)},
		{"empty", ""},
		{"unicode", "senha-çãõ-🔒"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))
			require.Len(t, strings.Split(hash, "$"), 6)

			require.NoError(t, VerifyPassword(tt.password, hash))
			require.ErrorIs(t, VerifyPassword(tt.password+"x", hash), ErrPasswordMismatch)
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.NoError(t, VerifyPassword("same", h1))
	require.NoError(t, VerifyPassword("same", h2))
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	} {
		require.ErrorIs(t, VerifyPassword("pw", bad), ErrInvalidHash, bad)
	}
}

func TestVerifyPassword_PepperMatters(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	SetPepper("other-pepper")
	t.Cleanup(func() { SetPepper("test-pepper") })

	require.ErrorIs(t, VerifyPassword("pw", hash), ErrPasswordMismatch)
}

func TestGeneratePassword(t *testing.T) {
	p1, err := GeneratePassword()
	require.NoError(t, err)
	p2, err := GeneratePassword()
	require.NoError(t, err)

	require.Len(t, p1, 16)
	require.NotEqual(t, p1, p2)

	hash, err := HashPassword(p1)
	require.NoError(t, err)
	require.NoError(t, VerifyPassword(p1, hash))
}

func TestLoadPepper(t *testing.T) {
	t.Cleanup(func() { SetPepper("test-pepper") })
	path := t.TempDir() + "/secrets/pepper"

	require.NoError(t, LoadPepper(path))
	first := Pepper()
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	SetPepper("")
	require.NoError(t, LoadPepper(path))
	require.Equal(t, first, Pepper())
}
