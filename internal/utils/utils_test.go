package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/config"
	"patient-portal-server/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPasswordMeetsPolicy(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Str0ng!pass", true},
		{"Sh0rt!", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSpecial12", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordMeetsPolicy(tt.password, 8))
		})
	}
}

func TestTokens(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}
	identity := models.Identity{UserID: "user-1", LoginID: "ana@example.com"}

	access, refresh, err := GenerateTokens(identity, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())

	_, err = ValidateToken(refresh, cfg.JWTSecret)
	assert.Error(t, err, "refresh tokens are signed with their own secret")

	claims, err = ValidateToken(refresh, cfg.JWTRefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password_policy"`
}

func bind(t *testing.T, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req signup
	return w, BindAndValidate(c, &req)
}

func TestBindAndValidate(t *testing.T) {
	require.NoError(t, RegisterValidators(config.PasswordPolicy{MinLength: 8}))

	_, ok := bind(t, `{"email":"ana@example.com","password":"Str0ng!pass"}`)
	assert.True(t, ok)

	w, ok := bind(t, `{"email":"nope","password":"weak"}`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperr.KindValidation, resp.Kind)
	assert.Equal(t, "must be a valid email address", resp.Fields["email"])
	assert.Contains(t, resp.Fields["password"], "at least 8 characters")

	w, ok = bind(t, `{not json`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, errors.New("dial tcp: connection refused"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Retryable)
	assert.Equal(t, apperr.KindUnavailable, resp.Kind)
	assert.NotContains(t, resp.Error, "connection refused")
}
