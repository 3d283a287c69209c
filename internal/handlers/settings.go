package handlers

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsStore reads and writes the single settings document.
type SettingsStore interface {
	Get(ctx context.Context) (models.AppSettings, error)
	Save(ctx context.Context, s models.AppSettings) error
}

type SettingsHandler struct {
	repo   SettingsStore
	cache  CacheInvalidator
	logger *zap.Logger
}

func NewSettingsHandler(repo SettingsStore, cache CacheInvalidator, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{repo: repo, cache: cache, logger: logger}
}

// GetSettings godoc
// @Summary Get notification and display settings
// @Tags settings
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.AppSettings
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.repo.Get(ctx)
	if err != nil {
		storageError(c, h.logger, "load settings", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSettings godoc
// @Summary Update settings; omitted fields keep their value
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body models.UpdateSettingsRequest true "Changes"
// @Success 200 {object} models.AppSettings
// @Failure 400 {object} models.ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	if req.CCEmail != nil {
		cc := strings.TrimSpace(*req.CCEmail)
		if cc != "" {
			addr, err := mail.ParseAddress(cc)
			if err != nil {
				respondError(c, http.StatusBadRequest, "validation_error", "ccEmail is not a valid e-mail address")
				return
			}
			cc = utils.NormalizeEmail(addr.Address)
		}
		req.CCEmail = &cc
	}
	if req.StatusLabels != nil {
		req.StatusLabels.New = utils.SanitizeLine(req.StatusLabels.New)
		req.StatusLabels.Replied = utils.SanitizeLine(req.StatusLabels.Replied)
		req.StatusLabels.Archived = utils.SanitizeLine(req.StatusLabels.Archived)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	current, err := h.repo.Get(ctx)
	if err != nil {
		storageError(c, h.logger, "load settings", err)
		return
	}
	updated := req.Apply(current)
	updated.UpdatedAt = time.Now().UTC()

	if err := h.repo.Save(ctx, updated); err != nil {
		storageError(c, h.logger, "save settings", err)
		return
	}
	// status labels are embedded in cached statistics
	h.cache.Invalidate(ctx)

	h.logger.Info("settings updated", zap.String("by", utils.RedactEmail(c.GetString("email"))))
	c.JSON(http.StatusOK, updated)
}
