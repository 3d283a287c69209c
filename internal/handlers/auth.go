package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"interiors-admin-be/config"
	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/repository"
	"interiors-admin-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// AdminStore is the admin persistence used by AuthHandler.
type AdminStore interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	RecordLogin(ctx context.Context, admin *models.Admin) error
	UpdateRefreshToken(ctx context.Context, adminID, refreshToken string) error
}

// AllowList decides who may sign in.
type AllowList interface {
	IsAllowed(ctx context.Context, email string) (bool, error)
}

// GoogleProfile is the identity returned by Google after a code exchange.
type GoogleProfile struct {
	ID       string
	Email    string
	Name     string
	Picture  string
	Verified bool
}

// GoogleIdentity exchanges an authorization code for the signed-in profile.
type GoogleIdentity interface {
	Exchange(ctx context.Context, code string) (GoogleProfile, error)
}

type googleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleIdentity uses the authorization code flow with profile scopes only.
func NewGoogleIdentity(cfg *config.Config) GoogleIdentity {
	return &googleOAuth{conf: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.FrontendURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"openid",
		},
		Endpoint: google.Endpoint,
	}}
}

func (g *googleOAuth) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	svc, err := googleOAuth2.NewService(ctx, option.WithTokenSource(g.conf.TokenSource(ctx, token)))
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("init oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("get user info: %w", err)
	}

	verified := info.VerifiedEmail != nil && *info.VerifiedEmail
	return GoogleProfile{
		ID:       info.Id,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
		Verified: verified,
	}, nil
}

type AuthHandler struct {
	cfg    *config.Config
	admins AdminStore
	allow  AllowList
	google GoogleIdentity
	logger *zap.Logger
}

func NewAuthHandler(cfg *config.Config, admins AdminStore, allow AllowList, google GoogleIdentity, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		admins: admins,
		allow:  allow,
		google: google,
		logger: logger,
	}
}

// Login godoc
// @Summary Sign in with e-mail and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := h.admins.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && admin.Password == "") {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	if err != nil {
		storageError(c, h.logger, "find admin", err)
		return
	}

	if !utils.CheckPassword(admin.Password, req.Password) {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	// the allow-list is consulted only once the password matches
	if !h.checkAllowed(ctx, c, req.Email) {
		return
	}

	admin.Provider = "email"
	h.issueTokens(ctx, c, admin)
}

// GoogleAuth godoc
// @Summary Sign in with a Google authorization code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.GoogleAuthRequest true "Authorization code"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.google.Exchange(ctx, req.Token)
	if err != nil {
		h.logger.Warn("google sign-in failed", zap.Error(err))
		respondError(c, http.StatusUnauthorized, "google_auth_failed", "Could not verify the Google sign-in")
		return
	}
	if !profile.Verified {
		respondError(c, http.StatusUnauthorized, "google_auth_failed", "Google account e-mail is not verified")
		return
	}

	if !h.checkAllowed(ctx, c, profile.Email) {
		return
	}

	admin, err := h.admins.FindByEmail(ctx, profile.Email)
	if errors.Is(err, repository.ErrNotFound) {
		admin = &models.Admin{Email: profile.Email, Provider: "google"}
		if err := h.admins.Create(ctx, admin); err != nil {
			storageError(c, h.logger, "create admin", err)
			return
		}
	} else if err != nil {
		storageError(c, h.logger, "find admin", err)
		return
	}

	admin.GoogleID = profile.ID
	admin.Name = profile.Name
	admin.Picture = profile.Picture
	admin.Provider = "google"
	h.issueTokens(ctx, c, admin)
}

// RefreshToken godoc
// @Summary Rotate the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken, h.cfg.JWTSecret, utils.TokenTypeRefresh)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_refresh_token", "Invalid or expired refresh token")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := h.admins.FindByID(ctx, claims.AdminID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_refresh_token", "User not found")
		return
	}
	if admin.RefreshToken == "" || admin.RefreshToken != req.RefreshToken {
		respondError(c, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token not found or revoked")
		return
	}

	// access may have been revoked since the token was issued
	if !h.checkAllowed(ctx, c, admin.Email) {
		return
	}

	accessToken, refreshToken, err := h.generateTokens(admin)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "token_generation_failed", "Failed to generate tokens")
		return
	}
	if err := h.admins.UpdateRefreshToken(ctx, admin.ID.Hex(), refreshToken); err != nil {
		storageError(c, h.logger, "update refresh token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout godoc
// @Summary Revoke the refresh token
// @Tags auth
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.admins.UpdateRefreshToken(ctx, userID, ""); err != nil {
		storageError(c, h.logger, "logout", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetMe godoc
// @Summary Current admin profile
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.Admin
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := h.admins.FindByID(ctx, userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "user_not_found", "User not found")
		return
	}

	c.JSON(http.StatusOK, admin)
}

func (h *AuthHandler) checkAllowed(ctx context.Context, c *gin.Context, email string) bool {
	allowed, err := h.allow.IsAllowed(ctx, email)
	if err != nil {
		storageError(c, h.logger, "check access list", err)
		return false
	}
	if !allowed {
		h.logger.Info("sign-in refused", zap.String("email", utils.RedactEmail(email)))
		respondError(c, http.StatusForbidden, "access_denied", "This account is not allowed to use the dashboard")
		return false
	}
	return true
}

func (h *AuthHandler) generateTokens(admin *models.Admin) (string, string, error) {
	accessToken, err := utils.GenerateAccessToken(admin.ID.Hex(), admin.Email, h.cfg.JWTSecret, h.cfg.JWTAccessExpiration)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := utils.GenerateRefreshToken(admin.ID.Hex(), admin.Email, h.cfg.JWTSecret, h.cfg.JWTRefreshExpiration)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *AuthHandler) issueTokens(ctx context.Context, c *gin.Context, admin *models.Admin) {
	accessToken, refreshToken, err := h.generateTokens(admin)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "token_generation_failed", "Failed to generate tokens")
		return
	}

	admin.RefreshToken = refreshToken
	if err := h.admins.RecordLogin(ctx, admin); err != nil {
		storageError(c, h.logger, "record login", err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         admin,
	})
}
