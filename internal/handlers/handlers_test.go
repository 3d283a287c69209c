package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"interiors-admin-be/config"
	"interiors-admin-be/internal/middleware"
	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/repository"
	"interiors-admin-be/internal/services"
	"interiors-admin-be/internal/stats"
	"interiors-admin-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// --- fakes ---

type fakeSubmissions struct {
	mu    sync.Mutex
	items []*models.Submission
	err   error
	seq   int
}

func (f *fakeSubmissions) Create(_ context.Context, s *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seq++
	s.ID = "sub" + string(rune('0'+f.seq))
	f.items = append(f.items, s)
	return nil
}

func (f *fakeSubmissions) filter(flt models.SubmissionFilter) []*models.Submission {
	out := []*models.Submission{}
	for _, s := range f.items {
		if st := flt.StatusValue(); st != "" && s.Status != st {
			continue
		}
		if pt := flt.ProjectTypeValue(); pt != "" && s.ProjectType != pt {
			continue
		}
		if flt.Query != "" && !utils.ContainsFold(s.Name+" "+s.Email, flt.Query) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (f *fakeSubmissions) List(_ context.Context, flt models.SubmissionFilter) ([]*models.Submission, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	all := f.filter(flt)
	start := (flt.Page - 1) * flt.PerPage
	if start > len(all) {
		start = len(all)
	}
	end := start + flt.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (f *fakeSubmissions) All(_ context.Context, flt models.SubmissionFilter) ([]*models.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(flt), nil
}

func (f *fakeSubmissions) Get(_ context.Context, id string) (*models.Submission, error) {
	for _, s := range f.items {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubmissions) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error) {
	s, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Status = status
	return s, nil
}

func (f *fakeSubmissions) AddNote(ctx context.Context, id string, note models.Note) (*models.Submission, error) {
	s, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Notes = append(s.Notes, note)
	return s, nil
}

func (f *fakeSubmissions) Delete(_ context.Context, id string) error {
	for i, s := range f.items {
		if s.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeNotifier struct {
	got []models.Submission
}

func (f *fakeNotifier) NotifyAsync(s models.Submission) { f.got = append(f.got, s) }

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(context.Context) { f.calls++ }

func newSubmissionRouter(repo *fakeSubmissions) (*gin.Engine, *fakeNotifier, *fakeInvalidator) {
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	h := NewSubmissionHandler(repo, notifier, inv, zap.NewNop())
	h.clock = func() time.Time { return fixedNow }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "admin1")
		c.Set("email", "owner@example.com")
	})
	r.POST("/contact", h.SubmitContact)
	r.GET("/submissions", h.ListSubmissions)
	r.GET("/submissions/suggest", h.SuggestSubmissions)
	r.GET("/submissions/export", h.ExportSubmissions)
	r.GET("/submissions/:id", h.GetSubmission)
	r.PATCH("/submissions/:id/status", h.UpdateStatus)
	r.POST("/submissions/:id/notes", h.AddNote)
	r.DELETE("/submissions/:id", h.DeleteSubmission)
	return r, notifier, inv
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedSubmissions() *fakeSubmissions {
	return &fakeSubmissions{items: []*models.Submission{
		{ID: "a", Name: "Asha Rao", Email: "asha@example.com", ProjectType: "Villa", BudgetRange: models.Budget1To2Cr, Status: models.StatusNew, SubmittedAt: fixedNow.Add(-time.Hour), ProjectDetails: "Sea facing, 4 bedrooms"},
		{ID: "b", Name: "José Díaz", Email: "jose@example.com", ProjectType: "Renovation", Status: models.StatusReplied, SubmittedAt: fixedNow.Add(-48 * time.Hour)},
		{ID: "c", Name: "Meera K", Email: "meera@example.com", ProjectType: "Villa", Status: models.StatusArchived},
	}}
}

// --- submissions ---

func TestSubmitContact(t *testing.T) {
	repo := &fakeSubmissions{}
	r, notifier, inv := newSubmissionRouter(repo)

	w := doJSON(r, http.MethodPost, "/contact", gin.H{
		"name":           "  Asha <b>Rao</b> ",
		"email":          "asha@example.com",
		"projectType":    "Villa",
		"budgetRange":    "₹1CR - 2CR",
		"projectDetails": "Line one\nLine two<script>x</script>",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, repo.items, 1)
	got := repo.items[0]
	assert.Equal(t, "Asha Rao", got.Name)
	assert.Equal(t, models.Budget1To2Cr, got.BudgetRange)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Equal(t, fixedNow, got.SubmittedAt)
	assert.Contains(t, got.ProjectDetails, "Line one\nLine two")
	assert.NotContains(t, got.ProjectDetails, "<script>")

	require.Len(t, notifier.got, 1)
	assert.Equal(t, got.ID, notifier.got[0].ID)
	assert.Equal(t, 1, inv.calls)
}

func TestSubmitContact_Validation(t *testing.T) {
	r, notifier, _ := newSubmissionRouter(&fakeSubmissions{})

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing email", gin.H{"name": "A"}},
		{"bad email", gin.H{"name": "A", "email": "nope"}},
		{"unknown budget", gin.H{"name": "A", "email": "a@example.com", "budgetRange": "cheap"}},
		{"name is only markup", gin.H{"name": "<i></i>", "email": "a@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/contact", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, notifier.got)
}

func TestSubmitContact_StorageDown(t *testing.T) {
	r, notifier, _ := newSubmissionRouter(&fakeSubmissions{err: context.DeadlineExceeded})
	w := doJSON(r, http.MethodPost, "/contact", gin.H{"name": "A", "email": "a@example.com"})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Empty(t, notifier.got)
}

func TestListSubmissions(t *testing.T) {
	r, _, _ := newSubmissionRouter(seedSubmissions())

	w := doJSON(r, http.MethodGet, "/submissions?projectType=Villa&perPage=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SubmissionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Submissions, 1)
	assert.True(t, resp.HasNextPage)

	w = doJSON(r, http.MethodGet, "/submissions?q=jose", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Submissions, 1)
	assert.Equal(t, "b", resp.Submissions[0].ID)
	assert.False(t, resp.HasNextPage)

	for _, q := range []string{"status=pending", "page=0", "perPage=500", "page=x"} {
		w = doJSON(r, http.MethodGet, "/submissions?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w = doJSON(r, http.MethodGet, "/submissions?status=all", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
}

func TestSubmissionMutations(t *testing.T) {
	repo := seedSubmissions()
	r, _, inv := newSubmissionRouter(repo)

	w := doJSON(r, http.MethodPatch, "/submissions/a/status", gin.H{"status": "replied"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusReplied, repo.items[0].Status)
	assert.Equal(t, 1, inv.calls)

	w = doJSON(r, http.MethodPatch, "/submissions/a/status", gin.H{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPatch, "/submissions/missing/status", gin.H{"status": "new"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/submissions/a/notes", gin.H{"text": "Called back"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.items[0].Notes, 1)
	assert.Equal(t, "owner@example.com", repo.items[0].Notes[0].Author)
	assert.Equal(t, fixedNow, repo.items[0].Notes[0].CreatedAt)

	w = doJSON(r, http.MethodGet, "/submissions/b", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/submissions/b", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 2, inv.calls)

	w = doJSON(r, http.MethodGet, "/submissions/b", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestSubmissions(t *testing.T) {
	r, _, _ := newSubmissionRouter(seedSubmissions())

	w := doJSON(r, http.MethodGet, "/submissions/suggest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/submissions/suggest?q=mee", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meera@example.com")
}

func TestExportSubmissions(t *testing.T) {
	r, _, _ := newSubmissionRouter(seedSubmissions())

	w := doJSON(r, http.MethodGet, "/submissions/export?projectType=Villa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="submissions-2024-03-10.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"2024-03-10 11:00", "Asha Rao", "asha@example.com", "", "Villa", "₹1CR - 2CR", "new", "Sea facing, 4 bedrooms"}, rows[1])
	assert.Equal(t, "", rows[2][0], "missing timestamps export as an empty date")
}

// --- statistics ---

type fakeDashboard struct {
	got services.StatisticsQuery
	err error
}

func (f *fakeDashboard) Dashboard(_ context.Context, q services.StatisticsQuery) (*services.DashboardStatistics, error) {
	f.got = q
	if f.err != nil {
		return nil, f.err
	}
	res := stats.Compute(nil, fixedNow, stats.Options{WindowDays: q.WindowDays, Weeks: q.Weeks})
	return &services.DashboardStatistics{Result: res}, nil
}

type fakeProjectTypes struct {
	types []models.CategoryCount
	err   error
}

func (f fakeProjectTypes) ProjectTypes(context.Context) ([]models.CategoryCount, error) {
	return f.types, f.err
}

func TestGetStatistics(t *testing.T) {
	dash := &fakeDashboard{}
	h := NewStatisticsHandler(dash, fakeProjectTypes{}, zap.NewNop())
	r := gin.New()
	r.GET("/statistics", h.GetStatistics)

	w := doJSON(r, http.MethodGet, "/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.StatisticsQuery{}, dash.got)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["weeklySeries"], stats.DefaultWeeks)

	w = doJSON(r, http.MethodGet, "/statistics?now=2024-03-10T17:30:00%2B05:30&weeks=4&windowDays=30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fixedNow, dash.got.Now)
	assert.Equal(t, 4, dash.got.Weeks)
	assert.Equal(t, 30, dash.got.WindowDays)

	w = doJSON(r, http.MethodGet, "/statistics?period=90d", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, dash.got.WindowDays)

	for _, q := range []string{"now=yesterday", "weeks=0", "weeks=53", "windowDays=-1", "period=1y"} {
		w = doJSON(r, http.MethodGet, "/statistics?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	dash.err = errors.New("boom")
	w = doJSON(r, http.MethodGet, "/statistics", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetProjectTypes(t *testing.T) {
	r := gin.New()
	r.GET("/empty", NewStatisticsHandler(&fakeDashboard{}, fakeProjectTypes{}, zap.NewNop()).GetProjectTypes)
	r.GET("/full", NewStatisticsHandler(&fakeDashboard{}, fakeProjectTypes{types: []models.CategoryCount{{Name: "Villa", Count: 3}}}, zap.NewNop()).GetProjectTypes)

	w := doJSON(r, http.MethodGet, "/empty", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/full", nil)
	assert.JSONEq(t, `[{"name":"Villa","count":3}]`, w.Body.String())
}

// --- portfolio ---

type fakePortfolio struct {
	items map[string]*models.PortfolioItem
	err   error
}

func (f *fakePortfolio) List(context.Context, string) ([]*models.PortfolioItem, error) {
	out := []*models.PortfolioItem{}
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakePortfolio) Get(_ context.Context, id string) (*models.PortfolioItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return it, nil
}

func (f *fakePortfolio) Create(_ context.Context, item *models.PortfolioItem) error {
	if f.err != nil {
		return f.err
	}
	item.ID = "p1"
	f.items[item.ID] = item
	return nil
}

func (f *fakePortfolio) Update(ctx context.Context, id string, req models.UpdatePortfolioRequest) (*models.PortfolioItem, error) {
	it, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		it.Title = req.Title
	}
	return it, nil
}

func (f *fakePortfolio) Delete(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type fakeImages struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeImages) Upload(_ context.Context, filename string, data []byte) (services.StoredImage, error) {
	if f.err != nil {
		return services.StoredImage{}, f.err
	}
	if _, err := services.ValidateImage(filename, data); err != nil {
		return services.StoredImage{}, err
	}
	f.uploaded = append(f.uploaded, filename)
	return services.StoredImage{
		URL:          "https://cdn.example.com/portfolio/" + filename,
		Path:         "portfolio/" + filename,
		ThumbnailURL: "https://cdn.example.com/portfolio/thumbs/" + filename,
		ThumbPath:    "portfolio/thumbs/" + filename,
	}, nil
}

func (f *fakeImages) Delete(_ context.Context, paths ...string) error {
	f.deleted = append(f.deleted, paths...)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/portfolio", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newPortfolioRouter(repo *fakePortfolio, images services.ImageStore) *gin.Engine {
	h := NewPortfolioHandler(repo, images, zap.NewNop())
	r := gin.New()
	r.GET("/portfolio", h.ListPortfolio)
	r.GET("/portfolio/options", h.PortfolioOptions)
	r.POST("/portfolio", h.CreatePortfolioItem)
	r.PUT("/portfolio/:id", h.UpdatePortfolioItem)
	r.DELETE("/portfolio/:id", h.DeletePortfolioItem)
	return r
}

var portfolioFields = map[string]string{
	"title":       "Sunlit living room",
	"roomType":    "Living Room",
	"projectType": "Villa",
	"budgetRange": "₹50L - 1CR",
}

func TestCreatePortfolioItem(t *testing.T) {
	repo := &fakePortfolio{items: map[string]*models.PortfolioItem{}}
	images := &fakeImages{}
	r := newPortfolioRouter(repo, images)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, portfolioFields, "room.png", pngBytes(t)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	item := repo.items["p1"]
	require.NotNil(t, item)
	assert.Equal(t, models.Budget50LTo1Cr, item.BudgetRange)
	assert.Equal(t, "portfolio/room.png", item.ImagePath)
	assert.Equal(t, "portfolio/thumbs/room.png", item.ThumbPath)
	assert.NotContains(t, w.Body.String(), "thumbPath")
}

func TestCreatePortfolioItem_Rejections(t *testing.T) {
	t.Run("missing image", func(t *testing.T) {
		r := newPortfolioRouter(&fakePortfolio{items: map[string]*models.PortfolioItem{}}, &fakeImages{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, portfolioFields, "", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		r := newPortfolioRouter(&fakePortfolio{items: map[string]*models.PortfolioItem{}}, &fakeImages{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, portfolioFields, "notes.png", []byte("plain text")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage not configured", func(t *testing.T) {
		r := newPortfolioRouter(&fakePortfolio{items: map[string]*models.PortfolioItem{}}, services.DisabledImageStore{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, portfolioFields, "room.png", pngBytes(t)))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "storage_not_configured", resp.Error)
	})

	t.Run("database failure removes uploaded objects", func(t *testing.T) {
		images := &fakeImages{}
		r := newPortfolioRouter(&fakePortfolio{items: map[string]*models.PortfolioItem{}, err: errors.New("write failed")}, images)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, portfolioFields, "room.png", pngBytes(t)))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, []string{"portfolio/room.png", "portfolio/thumbs/room.png"}, images.deleted)
	})
}

func TestPortfolioUpdateAndDelete(t *testing.T) {
	repo := &fakePortfolio{items: map[string]*models.PortfolioItem{
		"p9": {ID: "p9", Title: "Old", ImagePath: "portfolio/a.jpg", ThumbPath: "portfolio/thumbs/a.jpg"},
	}}
	images := &fakeImages{}
	r := newPortfolioRouter(repo, images)

	w := doJSON(r, http.MethodPut, "/portfolio/p9", gin.H{"title": "New <em>title</em>"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New title", repo.items["p9"].Title)

	w = doJSON(r, http.MethodPut, "/portfolio/p9", gin.H{"budgetRange": "huge"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, "/portfolio/p9", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.items)
	assert.Equal(t, []string{"portfolio/a.jpg", "portfolio/thumbs/a.jpg"}, images.deleted)

	w = doJSON(r, http.MethodDelete, "/portfolio/p9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioOptions(t *testing.T) {
	r := newPortfolioRouter(&fakePortfolio{}, &fakeImages{})
	w := doJSON(r, http.MethodGet, "/portfolio/options", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var opts models.PortfolioOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Equal(t, models.RoomTypes, opts.RoomTypes)
	require.Len(t, opts.BudgetRanges, len(models.BudgetRanges()))
	assert.Equal(t, "₹10L - 30L", opts.BudgetRanges[0].Label)
}

// --- settings ---

type fakeSettings struct {
	s     models.AppSettings
	saves int
}

func (f *fakeSettings) Get(context.Context) (models.AppSettings, error) { return f.s, nil }

func (f *fakeSettings) Save(_ context.Context, s models.AppSettings) error {
	f.s = s
	f.saves++
	return nil
}

func TestUpdateSettings(t *testing.T) {
	store := &fakeSettings{s: models.DefaultSettings("owner@example.com")}
	inv := &fakeInvalidator{}
	h := NewSettingsHandler(store, inv, zap.NewNop())
	r := gin.New()
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)

	w := doJSON(r, http.MethodPut, "/settings", gin.H{"ccEmail": "not an address"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.saves)

	w = doJSON(r, http.MethodPut, "/settings", gin.H{
		"instantAlerts": true,
		"ccEmail":       "Studio <Studio@Example.com>",
		"statusLabels":  gin.H{"replied": "Contacted"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, store.s.InstantAlerts)
	assert.True(t, store.s.DailyDigest, "omitted fields keep their value")
	assert.Equal(t, "studio@example.com", store.s.CCEmail)
	assert.Equal(t, "Contacted", store.s.StatusLabels.Replied)
	assert.Equal(t, "New", store.s.StatusLabels.New)
	assert.Equal(t, 1, inv.calls)

	w = doJSON(r, http.MethodPut, "/settings", gin.H{"ccEmail": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", store.s.CCEmail)

	w = doJSON(r, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notificationEmail":"owner@example.com"`)
}

// --- auth ---

type fakeAdmins struct {
	byEmail map[string]*models.Admin
}

func (f *fakeAdmins) Create(_ context.Context, a *models.Admin) error {
	a.ID = primitive.NewObjectID()
	f.byEmail[a.Email] = a
	return nil
}

func (f *fakeAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) FindByID(_ context.Context, id string) (*models.Admin, error) {
	for _, a := range f.byEmail {
		if a.ID.Hex() == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) RecordLogin(_ context.Context, a *models.Admin) error {
	f.byEmail[a.Email] = a
	return nil
}

func (f *fakeAdmins) UpdateRefreshToken(ctx context.Context, id, token string) error {
	a, err := f.FindByID(ctx, id)
	if err != nil {
		return err
	}
	a.RefreshToken = token
	return nil
}

type fakeAllowList map[string]bool

func (f fakeAllowList) IsAllowed(_ context.Context, email string) (bool, error) {
	return f[email], nil
}

type fakeGoogle struct {
	profile GoogleProfile
	err     error
}

func (f fakeGoogle) Exchange(context.Context, string) (GoogleProfile, error) {
	return f.profile, f.err
}

func newAuthRouter(t *testing.T, google GoogleIdentity) (*gin.Engine, *fakeAdmins, fakeAllowList) {
	t.Helper()
	hash, err := utils.HashPassword("correct horse")
	require.NoError(t, err)

	admins := &fakeAdmins{byEmail: map[string]*models.Admin{
		"owner@example.com":  {ID: primitive.NewObjectID(), Email: "owner@example.com", Password: hash},
		"former@example.com": {ID: primitive.NewObjectID(), Email: "former@example.com", Password: hash},
	}}
	allow := fakeAllowList{"owner@example.com": true, "new@example.com": true}
	cfg := &config.Config{JWTSecret: "test-secret", JWTAccessExpiration: time.Minute, JWTRefreshExpiration: time.Hour}

	h := NewAuthHandler(cfg, admins, allow, google, zap.NewNop())
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/google", h.GoogleAuth)
	r.POST("/auth/refresh", h.RefreshToken)
	return r, admins, allow
}

func TestLogin(t *testing.T) {
	r, admins, _ := newAuthRouter(t, fakeGoogle{})

	w := doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "owner@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "former@example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// without the password, allow-listed and unlisted addresses look the same
	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "former@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "stranger@example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "new@example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "allowed but no account yet")

	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "owner@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, resp.RefreshToken, admins.byEmail["owner@example.com"].RefreshToken)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGoogleAuth(t *testing.T) {
	t.Run("unverified e-mail", func(t *testing.T) {
		r, _, _ := newAuthRouter(t, fakeGoogle{profile: GoogleProfile{Email: "new@example.com"}})
		w := doJSON(r, http.MethodPost, "/auth/google", gin.H{"token": "code"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("not on the allow-list", func(t *testing.T) {
		r, admins, _ := newAuthRouter(t, fakeGoogle{profile: GoogleProfile{Email: "stranger@example.com", Verified: true}})
		w := doJSON(r, http.MethodPost, "/auth/google", gin.H{"token": "code"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, admins.byEmail, "stranger@example.com")
	})

	t.Run("first sign-in creates the admin", func(t *testing.T) {
		r, admins, _ := newAuthRouter(t, fakeGoogle{profile: GoogleProfile{ID: "g1", Email: "new@example.com", Name: "New Admin", Verified: true}})
		w := doJSON(r, http.MethodPost, "/auth/google", gin.H{"token": "code"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		created := admins.byEmail["new@example.com"]
		require.NotNil(t, created)
		assert.Equal(t, "google", created.Provider)
		assert.Equal(t, "g1", created.GoogleID)
	})

	t.Run("exchange failure", func(t *testing.T) {
		r, _, _ := newAuthRouter(t, fakeGoogle{err: errors.New("invalid_grant")})
		w := doJSON(r, http.MethodPost, "/auth/google", gin.H{"token": "code"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRefreshToken(t *testing.T) {
	r, admins, allow := newAuthRouter(t, fakeGoogle{})

	w := doJSON(r, http.MethodPost, "/auth/login", gin.H{"email": "owner@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var login models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": login.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "access tokens cannot refresh")

	w = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var rotated map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rotated))
	assert.Equal(t, rotated["refreshToken"], admins.byEmail["owner@example.com"].RefreshToken)

	assert.NotEqual(t, login.RefreshToken, rotated["refreshToken"])

	w = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "old token is revoked after rotation")

	delete(allow, "owner@example.com")
	w = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": rotated["refreshToken"]})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
