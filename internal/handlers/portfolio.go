package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/services"
	"interiors-admin-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortfolioStore is the gallery persistence used by PortfolioHandler.
type PortfolioStore interface {
	List(ctx context.Context, roomType string) ([]*models.PortfolioItem, error)
	Get(ctx context.Context, id string) (*models.PortfolioItem, error)
	Create(ctx context.Context, item *models.PortfolioItem) error
	Update(ctx context.Context, id string, req models.UpdatePortfolioRequest) (*models.PortfolioItem, error)
	Delete(ctx context.Context, id string) error
}

type PortfolioHandler struct {
	repo   PortfolioStore
	images services.ImageStore
	logger *zap.Logger
}

func NewPortfolioHandler(repo PortfolioStore, images services.ImageStore, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{repo: repo, images: images, logger: logger}
}

// ListPortfolio godoc
// @Summary List gallery items, newest first
// @Tags portfolio
// @Produce json
// @Param roomType query string false "Room type filter; All disables it"
// @Success 200 {array} models.PortfolioItem
// @Router /portfolio [get]
func (h *PortfolioHandler) ListPortfolio(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.repo.List(ctx, strings.TrimSpace(c.Query("roomType")))
	if err != nil {
		storageError(c, h.logger, "load portfolio", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// PortfolioOptions godoc
// @Summary Values offered by the portfolio form and filters
// @Tags portfolio
// @Produce json
// @Success 200 {object} models.PortfolioOptions
// @Router /portfolio/options [get]
func (h *PortfolioHandler) PortfolioOptions(c *gin.Context) {
	budgets := make([]models.BudgetLabel, 0, len(models.BudgetRanges()))
	for _, id := range models.BudgetRanges() {
		budgets = append(budgets, models.BudgetLabel{ID: id, Label: id.Label()})
	}
	c.JSON(http.StatusOK, models.PortfolioOptions{
		RoomTypes:    models.RoomTypes,
		ProjectTypes: models.ProjectTypes,
		BudgetRanges: budgets,
	})
}

// CreatePortfolioItem godoc
// @Summary Upload an image and add it to the gallery
// @Tags portfolio
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param roomType formData string true "Room type"
// @Param projectType formData string true "Project type"
// @Param budgetRange formData string true "Budget range id or label"
// @Param image formData file true "JPG, PNG, GIF or WEBP up to 10MB"
// @Success 201 {object} models.PortfolioItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /portfolio [post]
func (h *PortfolioHandler) CreatePortfolioItem(c *gin.Context) {
	var req models.CreatePortfolioRequest
	if err := c.ShouldBind(&req); err != nil {
		validationError(c, err)
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "An image file is required")
		return
	}
	if fh.Size > services.MaxImageBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "Images must be 10MB or smaller")
		return
	}
	f, err := fh.Open()
	if err != nil {
		validationError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageBytes+1))
	if err != nil {
		validationError(c, err)
		return
	}
	if len(data) > services.MaxImageBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "Images must be 10MB or smaller")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*requestTimeout)
	defer cancel()

	stored, err := h.images.Upload(ctx, fh.Filename, data)
	if err != nil {
		storageError(c, h.logger, "upload image", err)
		return
	}

	item := &models.PortfolioItem{
		Title:        utils.SanitizeLine(req.Title),
		RoomType:     utils.SanitizeLine(req.RoomType),
		ProjectType:  utils.SanitizeLine(req.ProjectType),
		BudgetRange:  models.ParseBudgetRange(req.BudgetRange),
		ImageURL:     stored.URL,
		ImagePath:    stored.Path,
		ThumbnailURL: stored.ThumbnailURL,
		ThumbPath:    stored.ThumbPath,
	}
	if err := h.repo.Create(ctx, item); err != nil {
		if delErr := h.images.Delete(ctx, stored.Path, stored.ThumbPath); delErr != nil {
			h.logger.Warn("orphaned portfolio image", zap.String("path", stored.Path), zap.Error(delErr))
		}
		storageError(c, h.logger, "save portfolio item", err)
		return
	}

	h.logger.Info("portfolio item created", zap.String("id", item.ID), zap.String("path", item.ImagePath))
	c.JSON(http.StatusCreated, item)
}

// UpdatePortfolioItem godoc
// @Summary Edit gallery item metadata
// @Tags portfolio
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param body body models.UpdatePortfolioRequest true "Fields to change"
// @Success 200 {object} models.PortfolioItem
// @Failure 404 {object} models.ErrorResponse
// @Router /portfolio/{id} [put]
func (h *PortfolioHandler) UpdatePortfolioItem(c *gin.Context) {
	var req models.UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	req.Title = utils.SanitizeLine(req.Title)
	req.RoomType = utils.SanitizeLine(req.RoomType)
	req.ProjectType = utils.SanitizeLine(req.ProjectType)

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.repo.Update(ctx, c.Param("id"), req)
	if err != nil {
		storageError(c, h.logger, "update portfolio item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeletePortfolioItem godoc
// @Summary Remove a gallery item and its images
// @Tags portfolio
// @Security ApiKeyAuth
// @Param id path string true "Item ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /portfolio/{id} [delete]
func (h *PortfolioHandler) DeletePortfolioItem(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.repo.Get(ctx, c.Param("id"))
	if err != nil {
		storageError(c, h.logger, "load portfolio item", err)
		return
	}
	if err := h.repo.Delete(ctx, item.ID); err != nil {
		storageError(c, h.logger, "delete portfolio item", err)
		return
	}
	// the record is gone; a leftover object only costs storage
	if err := h.images.Delete(ctx, item.ImagePath, item.ThumbPath); err != nil && !errors.Is(err, services.ErrStorageNotConfigured) {
		h.logger.Warn("delete portfolio image", zap.String("path", item.ImagePath), zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}
