package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeText(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"plain":           {in: "Hazmat Fee", want: "Hazmat Fee"},
		"trims":           {in: "   Hazmat Fee  ", want: "Hazmat Fee"},
		"strips tags":     {in: "<b>Hazmat</b> Fee<script>x</script>", want: "Hazmat Feex"},
		"collapses lines": {in: "Hazmat\n\tFee", want: "Hazmat Fee"},
		"only whitespace": {in: " \n ", want: ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeText(tc.in))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$20.00", FormatPrice("$", decimal.NewFromInt(20)))
	assert.Equal(t, "€15.50", FormatPrice("€", decimal.RequireFromString("15.5")))
	assert.Equal(t, "-$1.25", FormatPrice("$", decimal.RequireFromString("-1.25")))
}

func TestJWTRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateJWT("user-1", "ops@example.com", "admin", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims, err := ExtractClaims(req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestExtractClaims_Cookie(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateJWT("user-2", "", "customer", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})

	claims, err := ExtractClaims(req)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	SetSecret("one")
	token, err := GenerateJWT("user-1", "", "admin", time.Hour)
	require.NoError(t, err)

	SetSecret("two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestExtractClaims_NoToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractClaims(req)
	assert.Error(t, err)
}
