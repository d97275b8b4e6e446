package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	u := &User{Email: "ana@example.com"}
	require.NoError(t, u.SetPassword("Sup3r$ecret"))

	assert.NotEqual(t, "Sup3r$ecret", u.Password)
	assert.True(t, u.CheckPassword("Sup3r$ecret"))
	assert.False(t, u.CheckPassword("sup3r$ecret"))
}

func TestUserIdentity(t *testing.T) {
	u := &User{BaseModel: BaseModel{ID: "u-1"}, Email: "ana@example.com"}
	assert.Equal(t, Identity{UserID: "u-1", LoginID: "ana@example.com"}, u.Identity())
}

func TestNewFormResponse(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	resp, err := NewFormResponse("p-1", FormTypeHealthAssessment, map[string]any{"painLevel": "5"}, at)
	require.NoError(t, err)

	assert.Equal(t, "p-1", resp.PatientID)
	assert.Equal(t, at, resp.SubmittedAt)

	var decoded map[string]string
	require.NoError(t, resp.DecodeResponses(&decoded))
	assert.Equal(t, "5", decoded["painLevel"])
}

func TestRefreshTokenActive(t *testing.T) {
	now := time.Now()
	tok := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.Active(now))

	tok.IsRevoked = true
	assert.False(t, tok.Active(now))

	expired := RefreshToken{ExpiresAt: now.Add(-time.Second)}
	assert.False(t, expired.Active(now))
}
