package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/pkg/config"
)

func testTokens() *Tokens {
	return NewTokens(config.AuthConfig{JWTSecret: "test-secret", Issuer: "douglas-api", TokenTTL: time.Hour})
}

func TestIssueAndParse(t *testing.T) {
	tokens := testTokens()

	signed, err := tokens.Issue(Claims{
		UserID:   "2b1f6a0e-0000-4000-8000-000000000001",
		Email:    "admin@douglas.com",
		Name:     "Admin",
		Role:     "ADMIN",
		JobTitle: "NURSE",
	})
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin@douglas.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "NURSE", claims.JobTitle)
}

func TestParse_Rejects(t *testing.T) {
	tokens := testTokens()
	good, err := tokens.Issue(Claims{UserID: "u1", Role: "ADMIN"})
	require.NoError(t, err)

	other := NewTokens(config.AuthConfig{JWTSecret: "other", Issuer: "douglas-api", TokenTTL: time.Hour})
	wrongSecret, err := other.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)

	expired := testTokens()
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1", "iss": "douglas-api", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"tampered", good + "x"},
		{"wrong secret", wrongSecret},
		{"expired", stale},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssue_RequiresSubject(t *testing.T) {
	_, err := testTokens().Issue(Claims{Email: "x@y"})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
