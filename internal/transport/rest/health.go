package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// SnapshotState reports whether the in-memory website snapshot has
// loaded and whether it may lag the database.
type SnapshotState interface {
	Loaded() bool
	Stale() bool
}

type HealthHandler struct {
	db       *sql.DB
	snapshot SnapshotState
}

func NewHealthHandler(db *sql.DB, snapshot SnapshotState) *HealthHandler {
	return &HealthHandler{db: db, snapshot: snapshot}
}

// HandleLiveness → just says service is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleReadiness → checks DB connection and snapshot freshness
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	dbEntry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		dbEntry.Status = HealthUnhealthy
		dbEntry.Message = err.Error()
	}

	components := map[string]CheckEntry{"postgres": dbEntry}

	overall := dbEntry.Status
	if h.snapshot != nil {
		snapEntry := CheckEntry{
			Status:    HealthHealthy,
			CheckedAt: time.Now(),
			Details: map[string]any{
				"loaded": h.snapshot.Loaded(),
				"stale":  h.snapshot.Stale(),
			},
		}
		if !h.snapshot.Loaded() {
			snapEntry.Status = HealthUnhealthy
			snapEntry.Message = "website snapshot not loaded"
			overall = HealthUnhealthy
		} else if h.snapshot.Stale() {
			snapEntry.Message = "snapshot stale after failed refresh"
		}
		components["snapshot"] = snapEntry
	}

	resp := HealthResponse{
		Status:     overall,
		CheckedAt:  time.Now(),
		Components: components,
	}

	statusCode := http.StatusOK
	if overall == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
