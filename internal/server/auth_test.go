// ABOUTME: Tests for token issuing, validation, and extraction
// ABOUTME: Uses a fixed clock to check expiry handling

package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	a := NewAuthenticator("  s3cret  ")
	token, err := a.Issue("harper", time.Hour)
	require.NoError(t, err)

	claims, err := a.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "harper", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestValidate_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAuthenticator("s3cret")
	a.now = func() time.Time { return issuedAt }

	token, err := a.Issue("harper", time.Minute)
	require.NoError(t, err)

	a.now = func() time.Time { return issuedAt.Add(time.Hour) }
	_, err = a.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Errors(t *testing.T) {
	a := NewAuthenticator("s3cret")

	_, err := a.Validate("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = a.Validate("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewAuthenticator("").Validate("x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewAuthenticator("other").Issue("harper", 0)
	require.NoError(t, err)
	_, err = a.Validate(other)
	assert.ErrorIs(t, err, ErrInvalidToken, "token signed with another secret")
}

func TestIssue_Errors(t *testing.T) {
	_, err := NewAuthenticator("").Issue("me", 0)
	assert.Error(t, err, "expected error without secret")

	_, err = NewAuthenticator("s3cret").Issue("  ", 0)
	assert.Error(t, err, "expected error without subject")
}

func TestExtractBearerTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"BEARER abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractBearerTokenFromHeader(tt.header), "header %q", tt.header)
	}
}

func TestExtractToken_PrefersHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws?token=fromquery", nil)
	assert.Equal(t, "fromquery", ExtractToken(req))

	req.Header.Set("Authorization", "Bearer fromheader")
	assert.Equal(t, "fromheader", ExtractToken(req))
}
