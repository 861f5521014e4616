package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

type StatsReader interface {
	Snapshot(ctx context.Context) (map[string]int64, error)
}

type StatsHandler struct {
	stats StatsReader
}

func NewStatsHandler(stats StatsReader) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Counters(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "stats store not configured")
		return
	}

	counters, err := h.stats.Snapshot(r.Context())
	if err != nil {
		slog.Error("read turn stats", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"counters": counters})
}
