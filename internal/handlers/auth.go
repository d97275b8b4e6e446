package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/config"
	"patient-portal-server/internal/middleware"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/portal"
	"patient-portal-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Portal *portal.Service
	Log    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, portalService *portal.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Portal: portalService, Log: log.Named("auth")}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,password_policy"`
	GivenName  string `json:"givenName" binding:"required"`
	FamilyName string `json:"familyName" binding:"required"`
	Birthdate  string `json:"birthdate" binding:"required,datetime=2006-01-02"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	err := h.DB.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&existingUser).Error
	if err == nil {
		utils.RespondError(c, apperr.Conflict("User with this email already exists"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, err)
		return
	}

	user := models.User{
		Email:      req.Email,
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		Birthdate:  req.Birthdate,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.RespondError(c, apperr.Internal("Failed to hash password", err))
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = apperr.Conflict("User with this email already exists")
		}
		utils.RespondError(c, err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", user.ID))
	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string                `json:"accessToken"`
	RefreshToken string                `json:"refreshToken"`
	User         *models.UserSanitized `json:"user,omitempty"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.RespondError(c, err)
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	tokens, err := h.issueTokens(c, &user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	sanitized := user.Sanitize()
	tokens.User = &sanitized

	h.Log.Info("user logged in", zap.String("user_id", user.ID))
	utils.Success(c, "Login successful", tokens)
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken exchanges a refresh token for a new pair. The presented token
// is revoked.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// First try to get the refresh token from HTTP-only cookie
	tokenString, err := c.Cookie(refreshCookie)
	if err != nil || tokenString == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		tokenString = req.RefreshToken
	}

	claims, err := utils.ValidateToken(tokenString, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var storedToken models.RefreshToken
	if err := db.Where("token = ? AND user_id = ?", tokenString, claims.UserID).First(&storedToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.RespondError(c, err)
		}
		return
	}
	if !storedToken.Active(time.Now()) {
		utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.Unauthorized(c, "User no longer exists")
		return
	}

	storedToken.IsRevoked = true
	if err := db.Save(&storedToken).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	tokens, err := h.issueTokens(c, &user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Access token refreshed successfully", tokens)
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the refresh token and ends the portal session.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	tokenString, _ := c.Cookie(refreshCookie)
	if tokenString == "" {
		var req LogoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			tokenString = req.RefreshToken
		}
	}

	if tokenString != "" {
		err := h.DB.WithContext(c.Request.Context()).
			Model(&models.RefreshToken{}).
			Where("token = ? AND user_id = ? AND is_revoked = ?", tokenString, identity.UserID, false).
			Updates(map[string]interface{}{"is_revoked": true, "expires_at": time.Now()}).Error
		if err != nil {
			utils.RespondError(c, err)
			return
		}
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", !h.Cfg.IsDevelopment(), true)
	view := h.Portal.SignOut(identity.UserID)
	utils.Success(c, "Logout successful", view)
}

// Me returns the current authenticated identity.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	utils.Success(c, "Current user", identity)
}

func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (*TokenResponse, error) {
	accessToken, refreshTokenString, err := utils.GenerateTokens(user.Identity(), h.Cfg)
	if err != nil {
		return nil, apperr.Internal("Failed to generate tokens", err)
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&refreshToken).Error; err != nil {
		return nil, err
	}

	c.SetCookie(
		refreshCookie,
		refreshTokenString,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		!h.Cfg.IsDevelopment(),
		true,
	)
	return &TokenResponse{AccessToken: accessToken, RefreshToken: refreshTokenString}, nil
}
