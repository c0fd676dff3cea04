package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestValidateToken(t *testing.T) {
	auth := NewAuthService(testSecret)
	exp := time.Now().Add(time.Hour).Unix()

	sub, err := auth.ValidateToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "42", "exp": exp}))
	require.NoError(t, err)
	assert.Equal(t, "42", sub)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), jwt.MapClaims{"sub": "42", "exp": exp})},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "42", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"no expiry", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "42"})},
		{"numeric sub", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": 42, "exp": exp})},
		{"unsigned", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "42", "exp": exp})},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}
