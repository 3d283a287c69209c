package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/services"
	"interiors-admin-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmissionStore is the submission persistence used by SubmissionHandler.
type SubmissionStore interface {
	Create(ctx context.Context, s *models.Submission) error
	List(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, int, error)
	All(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error)
	AddNote(ctx context.Context, id string, note models.Note) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
}

// SubmissionNotifier sends the new-enquiry e-mail without blocking the request.
type SubmissionNotifier interface {
	NotifyAsync(s models.Submission)
}

// CacheInvalidator drops derived data after submissions change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

const suggestLimit = 8

var csvHeader = []string{"Date", "Name", "Email", "Phone", "Project Type", "Budget", "Status", "Details"}

type SubmissionHandler struct {
	repo     SubmissionStore
	notifier SubmissionNotifier
	cache    CacheInvalidator
	clock    func() time.Time
	logger   *zap.Logger
}

func NewSubmissionHandler(repo SubmissionStore, notifier SubmissionNotifier, cache CacheInvalidator, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		clock:    time.Now,
		logger:   logger,
	}
}

// SubmitContact godoc
// @Summary Submit the public contact form
// @Tags submissions
// @Accept json
// @Produce json
// @Param body body models.ContactRequest true "Enquiry"
// @Success 201 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Router /contact [post]
func (h *SubmissionHandler) SubmitContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	sub := &models.Submission{
		Name:           utils.SanitizeLine(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          utils.SanitizeLine(req.Phone),
		ProjectType:    utils.SanitizeLine(req.ProjectType),
		BudgetRange:    models.ParseBudgetRange(req.BudgetRange),
		ProjectDetails: utils.SanitizeText(req.ProjectDetails),
		Status:         models.StatusNew,
		SubmittedAt:    h.clock().UTC(),
	}
	if sub.Name == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "Name is required")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.repo.Create(ctx, sub); err != nil {
		storageError(c, h.logger, "save submission", err)
		return
	}
	h.cache.Invalidate(ctx)
	h.notifier.NotifyAsync(*sub)

	h.logger.Info("submission received",
		zap.String("submissionId", sub.ID),
		zap.String("email", utils.RedactEmail(sub.Email)),
		zap.String("projectType", sub.ProjectType),
	)
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID, "message": "Thank you, we will get back to you shortly"})
}

// ListSubmissions godoc
// @Summary List submissions, newest first
// @Tags submissions
// @Security ApiKeyAuth
// @Produce json
// @Param status query string false "new, replied, archived or all"
// @Param projectType query string false "Exact project type or all"
// @Param q query string false "Search in name and e-mail"
// @Param page query int false "Page number" default(1)
// @Param perPage query int false "Items per page" default(20)
// @Success 200 {object} models.SubmissionListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	filter, ok := parseSubmissionFilter(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	items, total, err := h.repo.List(ctx, filter)
	if err != nil {
		storageError(c, h.logger, "load submissions", err)
		return
	}

	page, perPage := filter.Page, filter.PerPage
	c.JSON(http.StatusOK, models.SubmissionListResponse{
		Submissions: items,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		HasNextPage: page*perPage < total,
	})
}

// SuggestSubmissions godoc
// @Summary Fuzzy suggestions for the search box
// @Tags submissions
// @Security ApiKeyAuth
// @Produce json
// @Param q query string true "Partial name or e-mail"
// @Success 200 {array} services.Suggestion
// @Router /submissions/suggest [get]
func (h *SubmissionHandler) SuggestSubmissions(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, []services.Suggestion{})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	all, err := h.repo.All(ctx, models.SubmissionFilter{})
	if err != nil {
		storageError(c, h.logger, "load submissions", err)
		return
	}
	c.JSON(http.StatusOK, services.Suggest(all, q, suggestLimit))
}

// GetSubmission godoc
// @Summary Get one submission
// @Tags submissions
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 404 {object} models.ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	sub, err := h.repo.Get(ctx, c.Param("id"))
	if err != nil {
		storageError(c, h.logger, "load submission", err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// UpdateStatus godoc
// @Summary Change the triage status
// @Tags submissions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param body body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.Submission
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /submissions/{id}/status [patch]
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	status, ok := models.ParseSubmissionStatus(req.Status)
	if !ok {
		respondError(c, http.StatusBadRequest, "validation_error", "Unknown status "+strconv.Quote(req.Status))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sub, err := h.repo.UpdateStatus(ctx, c.Param("id"), status)
	if err != nil {
		storageError(c, h.logger, "update status", err)
		return
	}
	h.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, sub)
}

// AddNote godoc
// @Summary Append an admin note
// @Tags submissions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param body body models.AddNoteRequest true "Note"
// @Success 200 {object} models.Submission
// @Failure 404 {object} models.ErrorResponse
// @Router /submissions/{id}/notes [post]
func (h *SubmissionHandler) AddNote(c *gin.Context) {
	var req models.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}
	text := utils.SanitizeText(req.Text)
	if text == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "Note text is empty")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	note := models.Note{
		Text:      text,
		Author:    c.GetString("email"),
		CreatedAt: h.clock().UTC(),
	}
	sub, err := h.repo.AddNote(ctx, c.Param("id"), note)
	if err != nil {
		storageError(c, h.logger, "add note", err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// DeleteSubmission godoc
// @Summary Delete a submission
// @Tags submissions
// @Security ApiKeyAuth
// @Param id path string true "Submission ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		storageError(c, h.logger, "delete submission", err)
		return
	}
	h.cache.Invalidate(ctx)
	c.Status(http.StatusNoContent)
}

// ExportSubmissions godoc
// @Summary Download the filtered submissions as CSV
// @Tags submissions
// @Security ApiKeyAuth
// @Produce text/csv
// @Param status query string false "new, replied, archived or all"
// @Param projectType query string false "Exact project type or all"
// @Param q query string false "Search in name and e-mail"
// @Success 200 {file} file
// @Router /submissions/export [get]
func (h *SubmissionHandler) ExportSubmissions(c *gin.Context) {
	filter, ok := parseSubmissionFilter(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	subs, err := h.repo.All(ctx, filter)
	if err != nil {
		storageError(c, h.logger, "export submissions", err)
		return
	}

	filename := fmt.Sprintf("submissions-%s.csv", h.clock().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if err := writeSubmissionsCSV(c.Writer, subs); err != nil {
		h.logger.Error("write csv export", zap.Error(err))
	}
}

func writeSubmissionsCSV(w io.Writer, subs []*models.Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range subs {
		date := ""
		if !s.SubmittedAt.IsZero() {
			date = s.SubmittedAt.UTC().Format("2006-01-02 15:04")
		}
		row := []string{
			date,
			s.Name,
			s.Email,
			s.Phone,
			s.ProjectType,
			s.BudgetRange.Label(),
			string(s.Status),
			s.ProjectDetails,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseSubmissionFilter(c *gin.Context) (models.SubmissionFilter, bool) {
	f := models.SubmissionFilter{
		Status:      strings.TrimSpace(c.Query("status")),
		ProjectType: strings.TrimSpace(c.Query("projectType")),
		Query:       strings.TrimSpace(c.Query("q")),
		Page:        1,
		PerPage:     20,
	}
	if st := f.StatusValue(); st != "" && !st.Valid() {
		respondError(c, http.StatusBadRequest, "validation_error", "Unknown status "+strconv.Quote(f.Status))
		return f, false
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "validation_error", "page must be a positive integer")
			return f, false
		}
		f.Page = n
	}
	if v := c.Query("perPage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondError(c, http.StatusBadRequest, "validation_error", "perPage must be between 1 and 100")
			return f, false
		}
		f.PerPage = n
	}
	return f, true
}
