package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/nikhilbhutani/examiner/internal/audit"
	"github.com/nikhilbhutani/examiner/internal/models"
)

type UsageReader interface {
	GetUsageSummary(ctx context.Context, startDate, endDate *time.Time) ([]audit.UsageSummary, error)
	GetUsageLogs(ctx context.Context, q audit.UsageQuery) ([]models.TurnUsageLog, error)
}

type UsageHandler struct {
	usage UsageReader
}

func NewUsageHandler(usage UsageReader) *UsageHandler {
	return &UsageHandler{usage: usage}
}

func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.usage == nil {
		writeError(w, http.StatusServiceUnavailable, "usage store not configured")
		return
	}

	startDate, endDate := dateRange(r)
	summary, err := h.usage.GetUsageSummary(r.Context(), startDate, endDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summary})
}

func (h *UsageHandler) Turns(w http.ResponseWriter, r *http.Request) {
	if h.usage == nil {
		writeError(w, http.StatusServiceUnavailable, "usage store not configured")
		return
	}

	q := audit.UsageQuery{
		Outcome: r.URL.Query().Get("outcome"),
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if q.Limit <= 0 {
		q.Limit = 50
	}
	q.StartDate, q.EndDate = dateRange(r)

	logs, err := h.usage.GetUsageLogs(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"turns": logs, "count": len(logs)})
}

// dateRange reads optional RFC 3339 start_date and end_date parameters.
// Unparseable values are ignored.
func dateRange(r *http.Request) (start, end *time.Time) {
	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			start = &t
		}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			end = &t
		}
	}
	return start, end
}
