package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillbook/internal/cashsession"
	tillbookHttp "github.com/MrJamesThe3rd/tillbook/internal/http"
	ledgerHandler "github.com/MrJamesThe3rd/tillbook/internal/http/ledger"
	reportHandler "github.com/MrJamesThe3rd/tillbook/internal/http/report"
	sessionHandler "github.com/MrJamesThe3rd/tillbook/internal/http/session"
	shiftHandler "github.com/MrJamesThe3rd/tillbook/internal/http/shift"
	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
	"github.com/MrJamesThe3rd/tillbook/internal/order"
	"github.com/MrJamesThe3rd/tillbook/internal/report"
	"github.com/MrJamesThe3rd/tillbook/internal/ridershift"
	"github.com/MrJamesThe3rd/tillbook/internal/store/memory"
)

type server struct {
	store      *memory.Store
	handler    http.Handler
	archiveDir string
}

func newServer(t *testing.T) *server {
	t.Helper()

	st := memory.New()
	svc := ledger.NewService(st.Ledger(), st)
	dir := t.TempDir()
	f := report.NewFormatter("en")

	h := tillbookHttp.New(
		5*time.Second,
		ledgerHandler.NewHandler(svc),
		sessionHandler.NewHandler(cashsession.NewManager(st.Sessions(), svc)),
		shiftHandler.NewHandler(ridershift.NewManager(st.Shifts(), svc)),
		reportHandler.NewHandler(
			report.NewGenerator(st.Reports(), nil),
			report.NewArchiver(report.NewDirSink(dir), "z", f),
			f,
		),
	)

	return &server{store: st, handler: h, archiveDir: dir}
}

func (s *server) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tillbook_http_requests_total")
}

func TestSessionLifecycle(t *testing.T) {
	s := newServer(t)
	restaurantID := uuid.New()
	staff := uuid.New()

	rec := s.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"restaurant_id":   restaurantID,
		"staff_id":        staff,
		"opening_balance": "1000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sessionID := decode(t, rec)["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"restaurant_id":   restaurantID,
		"staff_id":        staff,
		"opening_balance": "50",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	closedAt := time.Now()
	o := &order.Order{
		ID:            uuid.New(),
		RestaurantID:  restaurantID,
		OrderNumber:   "17",
		Type:          order.TypeDineIn,
		Status:        order.StatusClosed,
		PaymentStatus: order.PaymentPaid,
		Subtotal:      decimal.NewFromInt(500),
		Total:         decimal.NewFromInt(500),
		LastActionBy:  staff,
		CreatedAt:     closedAt,
		ClosedAt:      &closedAt,
		Payments:      []order.Payment{{Method: "CASH", Amount: decimal.NewFromInt(500)}},
	}
	s.store.AddOrder(o)

	sale := fmt.Sprintf("/api/v1/ledger/orders/%s/sale", o.ID)

	rec = s.do(t, http.MethodPost, sale, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["posted"])

	rec = s.do(t, http.MethodPost, sale, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["posted"])

	rec = s.do(t, http.MethodGet, "/api/v1/sessions/active/metrics?restaurant_id="+restaurantID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1500", decode(t, rec)["expected_cash"])

	rec = s.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/close", map[string]any{
		"staff_id":       staff,
		"actual_balance": "1490",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	closed := decode(t, rec)
	assert.Equal(t, "CLOSED", closed["status"])
	assert.Equal(t, "1500", closed["expected_balance"])
	assert.Equal(t, "-10", closed["variance"])

	rec = s.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/close", map[string]any{
		"staff_id":       staff,
		"actual_balance": "1490",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/reports/z/"+sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	z := decode(t, rec)
	assert.Equal(t, "500", z["sales"].(map[string]any)["gross"])
	assert.Equal(t, "-10", z["cash_flow"].(map[string]any)["variance"])

	rec = s.do(t, http.MethodGet, "/api/v1/reports/z/"+sessionID+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = s.do(t, http.MethodPost, "/api/v1/reports/z/"+sessionID+"/archive", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	pdfKey := decode(t, rec)["pdf_key"].(string)
	_, err := os.Stat(filepath.Join(s.archiveDir, filepath.FromSlash(pdfKey)))
	assert.NoError(t, err)
}

func TestShiftLifecycle(t *testing.T) {
	s := newServer(t)
	restaurantID := uuid.New()
	rider := uuid.New()
	staff := uuid.New()

	rec := s.do(t, http.MethodPost, "/api/v1/shifts", map[string]any{
		"restaurant_id": restaurantID,
		"rider_id":      rider,
		"staff_id":      staff,
		"opening_float": "2000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	shiftID := decode(t, rec)["id"].(string)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/ledger/balance?restaurant_id=%s&account_id=%s", restaurantID, rider), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2000", decode(t, rec)["balance"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/shifts/active?restaurant_id=%s&rider_id=%s", restaurantID, rider), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, shiftID, decode(t, rec)["id"])

	rec = s.do(t, http.MethodPost, "/api/v1/shifts/"+shiftID+"/close", map[string]any{
		"staff_id":     staff,
		"closing_cash": "2000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "0", decode(t, rec)["cash_difference"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/ledger/balance?restaurant_id=%s&account_id=%s", restaurantID, rider), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", decode(t, rec)["balance"])
}

func TestRequestErrors(t *testing.T) {
	s := newServer(t)

	type testCase struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "MissingRestaurant",
			method:     http.MethodGet,
			target:     "/api/v1/sessions/active",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NoActiveSession",
			method:     http.MethodGet,
			target:     "/api/v1/sessions/active?restaurant_id=" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "ValidationTags",
			method:     http.MethodPost,
			target:     "/api/v1/sessions",
			body:       map[string]any{"opening_balance": "10"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "NegativeOpeningBalance",
			method: http.MethodPost,
			target: "/api/v1/sessions",
			body: map[string]any{
				"restaurant_id":   uuid.New(),
				"staff_id":        uuid.New(),
				"opening_balance": "-1",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadSessionID",
			method:     http.MethodGet,
			target:     "/api/v1/reports/z/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownSession",
			method:     http.MethodGet,
			target:     "/api/v1/reports/z/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "ZeroAdjustment",
			method: http.MethodPost,
			target: "/api/v1/ledger/adjustments",
			body: map[string]any{
				"restaurant_id": uuid.New(),
				"amount":        "0",
				"description":   "recount",
				"processed_by":  uuid.New(),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "PayoutWithoutCategory",
			method: http.MethodPost,
			target: "/api/v1/ledger/payouts",
			body: map[string]any{
				"restaurant_id": uuid.New(),
				"amount":        "25",
				"processed_by":  uuid.New(),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "SubCentPayout",
			method: http.MethodPost,
			target: "/api/v1/ledger/payouts",
			body: map[string]any{
				"restaurant_id": uuid.New(),
				"amount":        "0.004",
				"category":      "supplies",
				"processed_by":  uuid.New(),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "SubCentAdjustment",
			method: http.MethodPost,
			target: "/api/v1/ledger/adjustments",
			body: map[string]any{
				"restaurant_id": uuid.New(),
				"amount":        "10.005",
				"description":   "recount",
				"processed_by":  uuid.New(),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "SubCentOpeningBalance",
			method: http.MethodPost,
			target: "/api/v1/sessions",
			body: map[string]any{
				"restaurant_id":   uuid.New(),
				"staff_id":        uuid.New(),
				"opening_balance": "100.001",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "SubCentShiftFloat",
			method: http.MethodPost,
			target: "/api/v1/shifts",
			body: map[string]any{
				"restaurant_id": uuid.New(),
				"rider_id":      uuid.New(),
				"staff_id":      uuid.New(),
				"opening_float": "20.009",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "SubCentClosingCash",
			method: http.MethodPost,
			target: "/api/v1/shifts/" + uuid.NewString() + "/close",
			body: map[string]any{
				"staff_id":     uuid.New(),
				"closing_cash": "1.005",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadSinceFilter",
			method:     http.MethodGet,
			target:     "/api/v1/ledger/entries?restaurant_id=" + uuid.NewString() + "&since=not-a-date",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadUntilFilter",
			method:     http.MethodGet,
			target:     "/api/v1/ledger/entries?restaurant_id=" + uuid.NewString() + "&until=14/03/2025",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestAdjustmentAndEntries(t *testing.T) {
	s := newServer(t)
	restaurantID := uuid.New()

	rec := s.do(t, http.MethodPost, "/api/v1/ledger/adjustments", map[string]any{
		"restaurant_id": restaurantID,
		"amount":        "-40",
		"description":   "moved to safe",
		"processed_by":  uuid.New(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/ledger/balance?restaurant_id="+restaurantID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-40", decode(t, rec)["balance"])

	rec = s.do(t, http.MethodGet, "/api/v1/ledger/entries?account_id=house&restaurant_id="+restaurantID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "CREDIT", entries[0]["transaction_type"])
	assert.Equal(t, "ADJUSTMENT", entries[0]["reference_type"])
}

func TestEntries_DateOnlyRange(t *testing.T) {
	s := newServer(t)
	restaurantID := uuid.New()

	rec := s.do(t, http.MethodPost, "/api/v1/ledger/adjustments", map[string]any{
		"restaurant_id": restaurantID,
		"amount":        "15",
		"description":   "found in drawer",
		"processed_by":  uuid.New(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	today := time.Now().UTC()

	type testCase struct {
		name      string
		query     string
		wantCount int
	}

	tests := []testCase{
		{
			name:      "UntilTodayIncludesToday",
			query:     "&until=" + today.Format(time.DateOnly),
			wantCount: 2,
		},
		{
			name:      "SinceTodayToToday",
			query:     "&since=" + today.Format(time.DateOnly) + "&until=" + today.Format(time.DateOnly),
			wantCount: 2,
		},
		{
			name:      "UntilYesterdayExcludesToday",
			query:     "&until=" + today.AddDate(0, 0, -1).Format(time.DateOnly),
			wantCount: 0,
		},
		{
			name:      "SinceTomorrow",
			query:     "&since=" + today.AddDate(0, 0, 1).Format(time.DateOnly),
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/v1/ledger/entries?restaurant_id="+restaurantID.String()+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var entries []map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
			assert.Len(t, entries, tt.wantCount)
		})
	}
}
