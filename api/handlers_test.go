package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chxlky/trello-report/internal/models"
	"github.com/chxlky/trello-report/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRunner struct {
	calls int32
	err   error
	noSet bool
}

func (f *fakeRunner) Run(ctx context.Context) (*report.Set, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.noSet {
		return nil, f.err
	}
	return &report.Set{
		GeneratedAt: time.Date(2023, 1, 5, 9, 30, 0, 0, time.UTC),
		Aggregate:   report.Report{Body: "aggregate\n"},
		Members:     []report.Report{{Initials: "TG", Body: "tg report\n"}},
	}, f.err
}

type fakeArchive struct{}

func (fakeArchive) Runs(ctx context.Context, limit int) ([]models.ReportRun, error) {
	return []models.ReportRun{{ID: "run-1", BoardID: "B1"}}, nil
}

func (fakeArchive) Run(ctx context.Context, id string) (*models.ReportRun, error) {
	switch id {
	case "run-1":
		return &models.ReportRun{ID: "run-1", BoardID: "B1", Reports: []models.ReportRecord{
			{RunID: "run-1", FileName: "out.txt", Body: "aggregate\n"},
		}}, nil
	case "broken":
		return nil, errors.New("database is locked")
	}
	return nil, fmt.Errorf("error loading report run %s: %w", id, gorm.ErrRecordNotFound)
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r.Group("/api"))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReports_BeforeAndAfterRefresh(t *testing.T) {
	runner := &fakeRunner{}
	r := newRouter(NewHandler(runner, nil))

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/reports", "").Code)

	w := do(r, http.MethodPost, "/api/reports/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reports":2`)

	w = do(r, http.MethodGet, "/api/reports", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aggregate\n", w.Body.String())

	w = do(r, http.MethodGet, "/api/reports/TG", "")
	assert.Equal(t, "tg report\n", w.Body.String())
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/reports/ZZ", "").Code)

	w = do(r, http.MethodGet, "/api/health", "")
	assert.Contains(t, w.Body.String(), "generatedAt")
}

func TestRefresh_Errors(t *testing.T) {
	r := newRouter(NewHandler(&fakeRunner{err: errors.New("trello down"), noSet: true}, nil))
	w := do(r, http.MethodPost, "/api/reports/refresh", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	r = newRouter(NewHandler(&fakeRunner{err: errors.New("s3 denied")}, nil))
	w = do(r, http.MethodPost, "/api/reports/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "s3 denied")
}

func TestRuns(t *testing.T) {
	r := newRouter(NewHandler(&fakeRunner{}, nil))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/runs", "").Code)

	r = newRouter(NewHandler(&fakeRunner{}, fakeArchive{}))
	w := do(r, http.MethodGet, "/api/runs?limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-1")
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/runs?limit=x", "").Code)
}

func TestRunByID(t *testing.T) {
	r := newRouter(NewHandler(&fakeRunner{}, nil))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/runs/run-1", "").Code)

	r = newRouter(NewHandler(&fakeRunner{}, fakeArchive{}))
	w := do(r, http.MethodGet, "/api/runs/run-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"FileName":"out.txt"`)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/runs/missing", "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/api/runs/broken", "").Code)
}

func TestTrelloWebhook(t *testing.T) {
	runner := &fakeRunner{}
	h := NewHandler(runner, nil)
	r := newRouter(h)

	assert.Equal(t, http.StatusOK, do(r, http.MethodHead, "/api/trello-webhook", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/trello-webhook", "").Code)

	w := do(r, http.MethodPost, "/api/trello-webhook", `{"action":{"type":"commentCard","data":{}}}`)
	assert.Contains(t, w.Body.String(), "No action taken")

	move := `{"action":{"type":"updateCard","date":"2023-01-05T09:00:00.000Z","data":{
		"card":{"id":"C1","name":"Leaky faucet"},
		"listBefore":{"id":"L1","name":"Inbox"},
		"listAfter":{"id":"L2","name":"Complete"}}}}`
	w = do(r, http.MethodPost, "/api/trello-webhook", move)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool {
		return h.Latest() != nil
	}, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runner.calls), int32(1))
}
