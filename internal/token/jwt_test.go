package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestJWT_IssueAndExtract_Roundtrip(t *testing.T) {
	j := NewJWT("secret", 0)
	u := uuid.New()

	tok, err := j.Issue(u)
	require.NoError(t, err)
	require.True(t, j.Verify(tok))

	sub, err := j.ExtractSubject(tok)
	require.NoError(t, err)
	assert.Equal(t, u.String(), sub)
}

func TestJWT_NoExpiryByDefault(t *testing.T) {
	j := NewJWT("secret", 0)

	tok, err := j.Issue(uuid.New())
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestJWT_ExpiryEnforced(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	j := NewJWT("secret", time.Hour)
	j.now = func() time.Time { return issuedAt }

	tok, err := j.Issue(uuid.New())
	require.NoError(t, err)
	assert.True(t, j.Verify(tok))

	j.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	assert.False(t, j.Verify(tok))
	_, err = j.ExtractSubject(tok)
	assert.Error(t, err)
}

func TestJWT_Verify_Rejects(t *testing.T) {
	j := NewJWT("secret", 0)
	other := NewJWT("other-secret", 0)

	foreign, err := other.Issue(uuid.New())
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: uuid.NewString()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "foreign key", token: foreign},
		{name: "none algorithm", token: unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, j.Verify(tt.token))
			_, err := j.ExtractSubject(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWT_ExtractSubject_Missing(t *testing.T) {
	j := NewJWT("secret", 0)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.True(t, j.Verify(tok))
	_, err = j.ExtractSubject(tok)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestJWT_TamperedTokenNeverVerifies(t *testing.T) {
	j := NewJWT("secret", 0)

	rapid.Check(t, func(t *rapid.T) {
		tok, err := j.Issue(uuid.New())
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		pos := rapid.IntRange(0, len(tok)-1).Draw(t, "pos")
		replacement := rapid.ByteRange(0x21, 0x7e).Filter(func(b byte) bool { return b != tok[pos] }).Draw(t, "replacement")

		tampered := []byte(tok)
		tampered[pos] = replacement

		if j.Verify(string(tampered)) {
			t.Fatalf("tampered token verified: %q", tampered)
		}
	})
}

func TestJWT_RejectsNonCanonicalSignatureEncoding(t *testing.T) {
	j := NewJWT("secret", 0)
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	for i := 0; i < 20; i++ {
		tok, err := j.Issue(uuid.New())
		require.NoError(t, err)

		last := tok[len(tok)-1]
		for _, c := range []byte(alphabet) {
			if c == last {
				continue
			}
			tampered := tok[:len(tok)-1] + string(c)
			assert.False(t, j.Verify(tampered), "tampered token verified: %q", tampered)
		}
	}
}
