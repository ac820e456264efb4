package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"StakePilot/internal/ledger"
	"StakePilot/internal/storage"
	"StakePilot/internal/tracker"
)

func newTestServer(t *testing.T) (*Server, *ledger.Ledger, *tracker.Tracker) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)
	lg := ledger.NewLedger(store)
	tr := tracker.NewTracker(store)
	return New(":0", lg, tr), lg, tr
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	s, lg, _ := newTestServer(t)
	_, err := lg.Reset(decimal.RequireFromString("2.5"))
	require.NoError(t, err)

	rec := get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CurrentCycle int    `json:"current_cycle"`
		Balance      string `json:"balance"`
		NextStake    string `json:"next_stake"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.CurrentCycle)
	require.Equal(t, "2.5", body.Balance)
	require.Equal(t, "2.5", body.NextStake)
}

func TestEventsEndpoint(t *testing.T) {
	s, lg, _ := newTestServer(t)
	_, err := lg.Reset(decimal.RequireFromString("1"))
	require.NoError(t, err)

	rec := get(t, s, "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []struct {
		ID   int64  `json:"id"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	require.Equal(t, int64(1), events[0].ID)
	require.Equal(t, "SYSTEM_RESET", events[0].Type)
}

func TestActiveBetEndpointEmpty(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/api/active-bet")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"active": false}`, rec.Body.String())
}

func TestHistoryEndpointEmpty(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}
