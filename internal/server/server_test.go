package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gameScope/internal/ingest"
	"gameScope/internal/model"
)

type fakeAggregator struct {
	summary *model.PlayerSummary
	err     error
}

func (f *fakeAggregator) ComputeSummary(_ context.Context, player string) (*model.PlayerSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	summary := *f.summary
	summary.Player = player
	return &summary, nil
}

type fakeBackfill struct {
	report ingest.Report
	err    error
	runs   int
}

func (f *fakeBackfill) Run(context.Context) (ingest.Report, error) {
	f.runs++
	return f.report, f.err
}

func TestHandleStats(t *testing.T) {
	aggregator := &fakeAggregator{summary: &model.PlayerSummary{
		Stats: []model.PlayerStat{{Player: "0xp1", GameID: 1, Win: 1, Total: 1, Ratio: 1}},
		Total: &model.PlayTotals{Plays: 1, Wins: 1, Ratio: 1},
		Won:   []model.TokenReward{{Token: "0xt1", Sum: 1}},
	}}
	controller := NewController(aggregator, &fakeBackfill{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats/0xp1", nil)
	rec := httptest.NewRecorder()
	controller.NewRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.PlayerSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "0xp1", got.Player)
	require.NotNil(t, got.Total)
	require.Equal(t, int64(1), got.Total.Plays)
	require.Equal(t, float64(1), got.Total.Ratio)
	require.Len(t, got.Won, 1)
}

func TestHandleStatsOmitsEmptyTotal(t *testing.T) {
	aggregator := &fakeAggregator{summary: &model.PlayerSummary{
		Stats: []model.PlayerStat{},
	}}
	controller := NewController(aggregator, &fakeBackfill{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats/0xp1", nil)
	rec := httptest.NewRecorder()
	controller.NewRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	_, hasTotal := raw["total"]
	require.False(t, hasTotal, "total must be omitted with zero plays")
}

func TestHandleStatsStoreFailure(t *testing.T) {
	aggregator := &fakeAggregator{err: fmt.Errorf("store unreachable")}
	controller := NewController(aggregator, &fakeBackfill{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats/0xp1", nil)
	rec := httptest.NewRecorder()
	controller.NewRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "error")
}

func TestHandleParser(t *testing.T) {
	backfill := &fakeBackfill{report: ingest.Report{Matched: 3, Inserted: 2, Rejected: 1}}
	controller := NewController(&fakeAggregator{summary: &model.PlayerSummary{}}, backfill, nil)

	req := httptest.NewRequest(http.MethodGet, "/parser", nil)
	rec := httptest.NewRecorder()
	controller.NewRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, backfill.runs)

	var body struct {
		Status string        `json:"status"`
		Report ingest.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "OK", body.Status)
	require.Equal(t, 2, body.Report.Inserted)
	// Rejected rows still yield a completion acknowledgement.
	require.Equal(t, 1, body.Report.Rejected)
}

func TestHandleHealth(t *testing.T) {
	controller := NewController(&fakeAggregator{summary: &model.PlayerSummary{}}, &fakeBackfill{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	controller.NewRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
