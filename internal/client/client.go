package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/leaveledger/internal/leave"
)

const (
	headerTenant = "X-Tenant-ID"
	headerUser   = "X-User-ID"
)

type Client struct {
	baseURL    string
	tenant     string
	user       string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithTenant returns a copy of the client scoped to tenantID.
func (c *Client) WithTenant(tenantID string) *Client {
	cp := *c
	cp.tenant = tenantID
	return &cp
}

// WithUser returns a copy of the client acting as userID. The acting user is
// recorded as the decider on approvals, rejections and cancellations.
func (c *Client) WithUser(userID string) *Client {
	cp := *c
	cp.user = userID
	return &cp
}

func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/api/v1/health", nil)
}

// Tenants and users

func (c *Client) CreateTenant(ctx context.Context, id, name string) (*leave.Tenant, error) {
	var result leave.Tenant
	if err := c.post(ctx, "/api/v1/tenants", map[string]string{"id": id, "name": name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListTenants(ctx context.Context) ([]leave.Tenant, error) {
	var result []leave.Tenant
	if err := c.get(ctx, "/api/v1/tenants", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) CreateUser(ctx context.Context, u *leave.User) (*leave.User, error) {
	body := map[string]any{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"hired_on": u.HiredOn,
	}
	var result leave.User
	if err := c.post(ctx, "/api/v1/users", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]leave.User, error) {
	var result []leave.User
	if err := c.get(ctx, "/api/v1/users", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*leave.User, error) {
	var result leave.User
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Leave types

func (c *Client) CreateLeaveType(ctx context.Context, lt *leave.LeaveType) (*leave.LeaveType, error) {
	body := map[string]any{
		"code":               lt.Code,
		"name":               lt.Name,
		"unit":               lt.Unit,
		"rounding_step":      lt.RoundingStep,
		"rounding_mode":      lt.RoundingMode,
		"hours_per_day":      lt.HoursPerDay,
		"timing":             lt.Timing,
		"business_days_only": lt.BusinessDaysOnly,
		"allow_negative":     lt.AllowNegative,
		"max_per_request":    lt.MaxPerRequest,
		"active":             lt.Active,
	}
	var result leave.LeaveType
	if err := c.post(ctx, "/api/v1/leave-types", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListLeaveTypes(ctx context.Context) ([]leave.LeaveType, error) {
	var result []leave.LeaveType
	if err := c.get(ctx, "/api/v1/leave-types", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetLeaveType(ctx context.Context, idOrCode string) (*leave.LeaveType, error) {
	var result leave.LeaveType
	if err := c.get(ctx, "/api/v1/leave-types/"+url.PathEscape(idOrCode), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateLeaveType patches the named fields, e.g. {"active": false}.
func (c *Client) UpdateLeaveType(ctx context.Context, idOrCode string, fields map[string]any) (*leave.LeaveType, error) {
	var result leave.LeaveType
	if err := c.patch(ctx, "/api/v1/leave-types/"+url.PathEscape(idOrCode), fields, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Grants

func (c *Client) CreateGrant(ctx context.Context, g *leave.Grant) (*leave.Grant, error) {
	body := map[string]any{
		"user_id":       g.UserID,
		"leave_type_id": g.LeaveTypeID,
		"quantity":      g.Quantity,
		"issued_on":     g.IssuedOn,
		"source":        g.Source,
		"note":          g.Note,
	}
	if g.ExpiresOn != nil {
		body["expires_on"] = g.ExpiresOn
	}
	var result leave.Grant
	if err := c.post(ctx, "/api/v1/grants", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListGrants(ctx context.Context, userID, leaveType string) ([]leave.Grant, error) {
	params := url.Values{}
	if userID != "" {
		params.Set("user", userID)
	}
	if leaveType != "" {
		params.Set("type", leaveType)
	}
	var result []leave.Grant
	if err := c.get(ctx, "/api/v1/grants?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DeleteGrant(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/grants/"+url.PathEscape(id))
}

// Calendar

func (c *Client) AddHoliday(ctx context.Context, date leave.Date, name string) (*leave.Holiday, error) {
	var result leave.Holiday
	if err := c.post(ctx, "/api/v1/holidays", map[string]any{"date": date, "name": name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListHolidays(ctx context.Context) ([]leave.Holiday, error) {
	var result []leave.Holiday
	if err := c.get(ctx, "/api/v1/holidays", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DeleteHoliday(ctx context.Context, date leave.Date) error {
	return c.del(ctx, "/api/v1/holidays/"+date.String())
}

func (c *Client) AddBlackout(ctx context.Context, b *leave.Blackout) (*leave.Blackout, error) {
	body := map[string]any{
		"leave_type_id": b.LeaveTypeID,
		"start":         b.Start,
		"end":           b.End,
		"reason":        b.Reason,
	}
	var result leave.Blackout
	if err := c.post(ctx, "/api/v1/blackouts", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListBlackouts(ctx context.Context) ([]leave.Blackout, error) {
	var result []leave.Blackout
	if err := c.get(ctx, "/api/v1/blackouts", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DeleteBlackout(ctx context.Context, id string) error {
	return c.del(ctx, "/api/v1/blackouts/"+url.PathEscape(id))
}

// Requests

type SubmitRequest struct {
	UserID      string          `json:"user_id,omitempty"`
	LeaveTypeID string          `json:"leave_type_id"`
	Start       leave.Date      `json:"start"`
	End         leave.Date      `json:"end"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"`
}

type QuoteResponse struct {
	leave.Quote
	Allocations []leave.Allocation `json:"allocations"`
}

func (c *Client) SubmitRequest(ctx context.Context, req SubmitRequest) (*leave.Request, error) {
	var result leave.Request
	if err := c.post(ctx, "/api/v1/requests", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) QuoteRequest(ctx context.Context, req SubmitRequest) (*QuoteResponse, error) {
	var result QuoteResponse
	if err := c.post(ctx, "/api/v1/requests/quote", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type RequestFilter struct {
	UserID    string
	LeaveType string
	Status    leave.RequestStatus
	Limit     int
	Offset    int
}

func (c *Client) ListRequests(ctx context.Context, f RequestFilter) ([]leave.Request, error) {
	params := url.Values{}
	if f.UserID != "" {
		params.Set("user", f.UserID)
	}
	if f.LeaveType != "" {
		params.Set("type", f.LeaveType)
	}
	if f.Status != "" {
		params.Set("status", string(f.Status))
	}
	if f.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", f.Limit))
	}
	if f.Offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", f.Offset))
	}
	var result []leave.Request
	if err := c.get(ctx, "/api/v1/requests?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetRequest(ctx context.Context, id string) (*leave.Request, error) {
	var result leave.Request
	if err := c.get(ctx, "/api/v1/requests/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ApproveRequest(ctx context.Context, id, note string) (*leave.Request, error) {
	return c.decide(ctx, id, "approve", note)
}

func (c *Client) RejectRequest(ctx context.Context, id, note string) (*leave.Request, error) {
	return c.decide(ctx, id, "reject", note)
}

func (c *Client) CancelRequest(ctx context.Context, id, note string) (*leave.Request, error) {
	return c.decide(ctx, id, "cancel", note)
}

func (c *Client) decide(ctx context.Context, id, action, note string) (*leave.Request, error) {
	var result leave.Request
	path := "/api/v1/requests/" + url.PathEscape(id) + "/" + action
	if err := c.post(ctx, path, map[string]string{"note": note}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Balances

func (c *Client) ListBalances(ctx context.Context, userID string, asOf leave.Date) ([]leave.Balance, error) {
	var result []leave.Balance
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/balances"+asOfQuery(asOf), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetBalance(ctx context.Context, userID, leaveType string, asOf leave.Date) (*leave.Balance, error) {
	var result leave.Balance
	path := "/api/v1/users/" + url.PathEscape(userID) + "/balances/" + url.PathEscape(leaveType) + asOfQuery(asOf)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func asOfQuery(asOf leave.Date) string {
	if asOf.IsZero() {
		return ""
	}
	return "?as_of=" + asOf.String()
}

// HTTP helpers

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, nil)
}

func (c *Client) patch(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "PATCH", path, body, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, "POST", path, body, result)
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

type apiError struct {
	Error string `json:"error"`
}

// StatusError is returned for any 4xx or 5xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

func (c *Client) doRequest(req *http.Request, result any) error {
	if c.tenant != "" {
		req.Header.Set(headerTenant, c.tenant)
	}
	if c.user != "" {
		req.Header.Set(headerUser, c.user)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
