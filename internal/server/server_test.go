package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/simonvc/leaveledger/internal/leave"
	"github.com/simonvc/leaveledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t *testing.T
	h http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "leave.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return &testServer{t: t, h: New(st, "", nil).Handler()}
}

func (ts *testServer) do(method, path string, body any, out any) int {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(HeaderTenant, "acme")
	req.Header.Set(HeaderUser, "boss")
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

// seed creates tenant acme, user alice, an ON_APPLY "annual" type and a
// ten day grant issued at the start of 2026.
func (ts *testServer) seed() {
	ts.t.Helper()
	require.Equal(ts.t, http.StatusCreated, ts.do("POST", "/api/v1/tenants", map[string]string{"id": "acme", "name": "Acme"}, nil))
	require.Equal(ts.t, http.StatusCreated, ts.do("POST", "/api/v1/users", map[string]string{"id": "alice", "name": "Alice"}, nil))
	require.Equal(ts.t, http.StatusCreated, ts.do("POST", "/api/v1/leave-types", map[string]any{
		"code": "annual", "name": "Annual leave", "unit": "DAY", "timing": "ON_APPLY",
	}, nil))
	require.Equal(ts.t, http.StatusCreated, ts.do("POST", "/api/v1/grants", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "quantity": "10", "issued_on": "2026-01-01",
	}, nil))
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)
	var out map[string]string
	assert.Equal(t, http.StatusOK, ts.do("GET", "/api/v1/health", nil, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestServer_TenantRequired(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/api/v1/users", nil, nil))
}

func TestServer_RequestLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.seed()

	var quote struct {
		leave.Quote
		Allocations []leave.Allocation `json:"allocations"`
	}
	assert.Equal(t, http.StatusOK, ts.do("POST", "/api/v1/requests/quote", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-06", "end": "2026-03-09",
	}, &quote))
	assert.Equal(t, 2, quote.ChargeableDays)
	assert.Equal(t, "2", quote.Quantity.String())
	require.Len(t, quote.Allocations, 1)

	var req leave.Request
	require.Equal(t, http.StatusCreated, ts.do("POST", "/api/v1/requests", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-06", "end": "2026-03-09",
	}, &req))
	assert.Equal(t, leave.StatusPending, req.Status)
	require.Len(t, req.Entries, 1)
	assert.Equal(t, leave.KindHold, req.Entries[0].Kind)

	var bal leave.Balance
	require.Equal(t, http.StatusOK, ts.do("GET", "/api/v1/users/alice/balances/annual?as_of=2026-03-01", nil, &bal))
	assert.Equal(t, "2", bal.Held.String())
	assert.Equal(t, "8", bal.Available.String())

	var approved leave.Request
	require.Equal(t, http.StatusOK, ts.do("POST", "/api/v1/requests/"+req.ID+"/approve", map[string]string{"note": "ok"}, &approved))
	assert.Equal(t, leave.StatusApproved, approved.Status)
	assert.Equal(t, "boss", approved.DecidedBy)
	assert.Len(t, approved.Entries, 3)

	var errResp errorResponse
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/api/v1/requests/"+req.ID+"/reject", nil, &errResp))
	assert.NotEmpty(t, errResp.Error)

	var balances []leave.Balance
	require.Equal(t, http.StatusOK, ts.do("GET", "/api/v1/users/alice/balances?as_of=2026-03-01", nil, &balances))
	require.Len(t, balances, 1)
	assert.Equal(t, "2", balances[0].Consumed.String())
	assert.Equal(t, "8", balances[0].Available.String())

	var listed []leave.Request
	require.Equal(t, http.StatusOK, ts.do("GET", "/api/v1/requests?status=APPROVED&user=alice", nil, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, req.ID, listed[0].ID)
}

func TestServer_SubmitErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.seed()

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown type", map[string]any{"user_id": "alice", "leave_type_id": "sick", "start": "2026-03-02", "end": "2026-03-02"}, http.StatusNotFound},
		{"unknown user", map[string]any{"user_id": "bob", "leave_type_id": "annual", "start": "2026-03-02", "end": "2026-03-02"}, http.StatusNotFound},
		{"bad date", map[string]any{"user_id": "alice", "leave_type_id": "annual", "start": "March", "end": "2026-03-02"}, http.StatusBadRequest},
		{"insufficient", map[string]any{"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-02", "end": "2026-03-31"}, http.StatusUnprocessableEntity},
		{"weekend only", map[string]any{"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-07", "end": "2026-03-08"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ts.do("POST", "/api/v1/requests", tt.body, nil))
		})
	}
}

func TestServer_DuplicateAndConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.seed()

	assert.Equal(t, http.StatusConflict, ts.do("POST", "/api/v1/users", map[string]string{"id": "alice", "name": "Alice"}, nil))

	var grants []leave.Grant
	require.Equal(t, http.StatusOK, ts.do("GET", "/api/v1/grants?user=alice&type=annual", nil, &grants))
	require.Len(t, grants, 1)

	require.Equal(t, http.StatusCreated, ts.do("POST", "/api/v1/requests", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-02", "end": "2026-03-03",
	}, nil))
	assert.Equal(t, http.StatusConflict, ts.do("POST", "/api/v1/requests", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-03", "end": "2026-03-04",
	}, nil))
	assert.Equal(t, http.StatusConflict, ts.do("DELETE", "/api/v1/grants/"+grants[0].ID, nil, nil))
}

func TestServer_Calendar(t *testing.T) {
	ts := newTestServer(t)
	ts.seed()

	require.Equal(t, http.StatusCreated, ts.do("POST", "/api/v1/holidays", map[string]string{"date": "2026-03-03", "name": "Founders day"}, nil))
	var quote leave.Quote
	require.Equal(t, http.StatusOK, ts.do("POST", "/api/v1/requests/quote", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-02", "end": "2026-03-04",
	}, &quote))
	assert.Equal(t, 2, quote.ChargeableDays)

	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", "/api/v1/holidays/2026-03-03", nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do("DELETE", "/api/v1/holidays/2026-03-03", nil, nil))

	var b leave.Blackout
	require.Equal(t, http.StatusCreated, ts.do("POST", "/api/v1/blackouts", map[string]string{
		"leave_type_id": "annual", "start": "2026-12-20", "end": "2026-12-31", "reason": "year end",
	}, &b))
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/api/v1/requests", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "start": "2026-12-21", "end": "2026-12-22",
	}, nil))

	var blackouts []leave.Blackout
	require.Equal(t, http.StatusOK, ts.do("GET", "/api/v1/blackouts", nil, &blackouts))
	require.Len(t, blackouts, 1)
	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", "/api/v1/blackouts/"+b.ID, nil, nil))
}

func TestServer_UpdateLeaveType(t *testing.T) {
	ts := newTestServer(t)
	ts.seed()

	var lt leave.LeaveType
	require.Equal(t, http.StatusOK, ts.do("PATCH", "/api/v1/leave-types/annual", map[string]any{"active": false, "name": "Vacation"}, &lt))
	assert.False(t, lt.Active)
	assert.Equal(t, "Vacation", lt.Name)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do("POST", "/api/v1/requests", map[string]any{
		"user_id": "alice", "leave_type_id": "annual", "start": "2026-03-02", "end": "2026-03-02",
	}, nil))

	var types []leave.LeaveType
	require.Equal(t, http.StatusOK, ts.do("GET", "/api/v1/leave-types", nil, &types))
	require.Len(t, types, 1)
	assert.True(t, types[0].BusinessDaysOnly)
}
