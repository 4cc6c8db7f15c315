package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gameScope/internal/ingest"
	"gameScope/internal/model"
)

// SummaryProvider computes a player summary on demand.
type SummaryProvider interface {
	ComputeSummary(ctx context.Context, player string) (*model.PlayerSummary, error)
}

// BackfillRunner walks the contract history and ingests matching plays.
type BackfillRunner interface {
	Run(ctx context.Context) (ingest.Report, error)
}

// Controller wires the pipeline into HTTP handlers. Dispatch only; all
// behavior lives in the aggregator and the backfill runner.
type Controller struct {
	aggregator SummaryProvider
	backfill   BackfillRunner
	logger     *zap.Logger
}

// NewController returns a new controller.
func NewController(aggregator SummaryProvider, backfill BackfillRunner, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{aggregator: aggregator, backfill: backfill, logger: logger}
}

// NewRouter returns a router with all the routes defined in this file.
func (c *Controller) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", c.HandleHealth).Methods("GET")
	r.HandleFunc("/stats/{player}", c.HandleStats).Methods("GET")
	r.HandleFunc("/parser", c.HandleParser).Methods("GET")

	return r
}

// HandleHealth reports liveness.
// Endpoint: GET /health
func (c *Controller) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStats returns the recomputed summary for one player.
// Endpoint: GET /stats/{player}
func (c *Controller) HandleStats(w http.ResponseWriter, r *http.Request) {
	player := mux.Vars(r)["player"]
	if player == "" {
		writeError(w, http.StatusBadRequest, "missing player id")
		return
	}

	summary, err := c.aggregator.ComputeSummary(r.Context(), player)
	if err != nil {
		c.logger.Error("compute summary failed", zap.String("player", player), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "summary unavailable")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandleParser runs the full historical backfill inline and acknowledges
// completion. Skipped rows do not fail the request.
// Endpoint: GET /parser
func (c *Controller) HandleParser(w http.ResponseWriter, r *http.Request) {
	report, err := c.backfill.Run(r.Context())
	if err != nil {
		c.logger.Error("backfill failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "backfill failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "OK",
		"report": report,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
