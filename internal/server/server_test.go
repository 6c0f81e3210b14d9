package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapstats/revenue-api/internal/aggregate"
	"github.com/swapstats/revenue-api/internal/fees"
	"github.com/swapstats/revenue-api/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitLogger()
}

type stubProvider struct {
	name  string
	fees  []fees.Fee
	start int64
	end   int64
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) GetFees(_ context.Context, start, end int64) ([]fees.Fee, error) {
	p.start = start
	p.end = end
	return p.fees, nil
}

func newTestRouter(providers ...aggregate.FeeProvider) *gin.Engine {
	router := gin.New()
	InitializeRoutes(router, NewRevenueHandler(aggregate.NewService(providers...)))
	return router
}

func TestGetRevenue_ReturnsAggregatedBreakdown(t *testing.T) {
	provider := &stubProvider{
		name: "thorchain",
		fees: []fees.Fee{{
			Service:   "thorchain",
			Timestamp: 1704110400, // 2024-01-01T12:00:00Z
			Amount:    "1000",
			AmountUSD: "12.50",
		}},
	}
	router := newTestRouter(provider)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/affiliate/revenue?startDate=2024-01-01&endDate=2024-01-02", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body aggregate.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.InDelta(t, 12.50, body.TotalUSD, 1e-9)
	assert.InDelta(t, 12.50, body.ByDay["2024-01-01"], 1e-9)
	assert.Empty(t, body.FailedProviders)

	// start at midnight, end inclusive through the last second of the day
	assert.Equal(t, int64(1704067200), provider.start)
	assert.Equal(t, int64(1704239999), provider.end)
}

func TestGetRevenue_ValidatesDateParams(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name  string
		query string
	}{
		{"missing both", ""},
		{"missing end", "?startDate=2024-01-01"},
		{"malformed start", "?startDate=01-01-2024&endDate=2024-01-02"},
		{"malformed end", "?startDate=2024-01-01&endDate=tomorrow"},
		{"end before start", "?startDate=2024-01-05&endDate=2024-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/api/v1/affiliate/revenue"+tc.query, nil)
			router.ServeHTTP(recorder, request)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestGetRevenue_SingleDayRange(t *testing.T) {
	provider := &stubProvider{name: "relay"}
	router := newTestRouter(provider)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/affiliate/revenue?startDate=2024-01-01&endDate=2024-01-01", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(1704067200), provider.start)
	assert.Equal(t, int64(1704153599), provider.end)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}
