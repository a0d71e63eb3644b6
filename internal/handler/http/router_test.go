package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID     = "6f1c2d3e-0000-4000-8000-000000000001"
	candidateID = "6f1c2d3e-0000-4000-8000-000000000002"
	requestID   = "6f1c2d3e-0000-4000-8000-0000000000aa"
)

type fakeAuthService struct {
	loginErr error
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if f.loginErr != nil {
		return auth.TokenResponse{}, f.loginErr
	}
	return auth.TokenResponse{AccessToken: "token", ExpiresAt: 1, User: user.UserResponse{Email: req.Email}}, nil
}

func (f *fakeAuthService) RegisterViaInvite(ctx context.Context, req auth.RegisterViaInviteRequest) (auth.TokenResponse, error) {
	return auth.TokenResponse{AccessToken: "token", User: user.UserResponse{Name: req.Name}}, nil
}

func (f *fakeAuthService) LoginWithGoogle(ctx context.Context, email string, verified bool) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, auth.ErrNoAccountForEmail
}

type fakeInvitationService struct{}

func (fakeInvitationService) Create(ctx context.Context, actor user.Actor, req invitation.CreateInviteRequest) (invitation.InviteResponse, error) {
	return invitation.InviteResponse{Email: req.Email}, nil
}

func (fakeInvitationService) List(ctx context.Context, actor user.Actor) ([]invitation.InviteResponse, error) {
	return []invitation.InviteResponse{}, nil
}

func (fakeInvitationService) Resend(ctx context.Context, actor user.Actor, id string) error {
	return nil
}

func (fakeInvitationService) Revoke(ctx context.Context, actor user.Actor, id string) error {
	return nil
}

type fakeUserService struct{}

func (fakeUserService) List(ctx context.Context, actor user.Actor, role user.Role) ([]user.UserResponse, error) {
	return []user.UserResponse{{ID: candidateID, Role: role}}, nil
}

type createCall struct {
	actor        user.Actor
	req          leave.CreateLeaveRequestRequest
	documentBody string
}

type fakeRequestService struct {
	mu         sync.Mutex
	created    []createCall
	createErr  error
	decideErr  error
	lastAction string
	lastID     string
	comment    string
	query      leave.ListRequestsQuery
	document   string
}

func (f *fakeRequestService) Create(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := createCall{actor: actor, req: req}
	if req.Document != nil {
		b, err := io.ReadAll(req.Document.Content)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		call.documentBody = string(b)
	}
	f.created = append(f.created, call)
	if f.createErr != nil {
		return leave.LeaveRequestResponse{}, f.createErr
	}
	return leave.LeaveRequestResponse{ID: requestID, UserID: actor.ID, Category: leave.Category(req.Category), Status: leave.StatusPending}, nil
}

func (f *fakeRequestService) decide(action string, id, comment string) (leave.LeaveRequestResponse, error) {
	f.lastAction, f.lastID, f.comment = action, id, comment
	if f.decideErr != nil {
		return leave.LeaveRequestResponse{}, f.decideErr
	}
	return leave.LeaveRequestResponse{ID: id, Status: leave.Status(action)}, nil
}

func (f *fakeRequestService) Approve(ctx context.Context, actor user.Actor, id string, comment string) (leave.LeaveRequestResponse, error) {
	return f.decide("approved", id, comment)
}

func (f *fakeRequestService) Reject(ctx context.Context, actor user.Actor, id string, comment string) (leave.LeaveRequestResponse, error) {
	return f.decide("rejected", id, comment)
}

func (f *fakeRequestService) ListMine(ctx context.Context, actor user.Actor) ([]leave.LeaveRequestResponse, error) {
	return []leave.LeaveRequestResponse{{ID: requestID, UserID: actor.ID}}, nil
}

func (f *fakeRequestService) GetMine(ctx context.Context, actor user.Actor, id string) (leave.LeaveRequestResponse, error) {
	if id != requestID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	return leave.LeaveRequestResponse{ID: id, UserID: actor.ID}, nil
}

func (f *fakeRequestService) List(ctx context.Context, actor user.Actor, query leave.ListRequestsQuery) ([]leave.LeaveRequestResponse, error) {
	f.query = query
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return []leave.LeaveRequestResponse{}, nil
}

func (f *fakeRequestService) OpenDocument(ctx context.Context, actor user.Actor, id string) (leave.DocumentFile, error) {
	if f.document == "" {
		return leave.DocumentFile{}, leave.ErrDocumentNotFound
	}
	return leave.DocumentFile{
		Name:        "note.pdf",
		ContentType: "application/pdf",
		Content:     io.NopCloser(strings.NewReader(f.document)),
	}, nil
}

type fakeBalanceService struct {
	year int
}

func (f *fakeBalanceService) UsedDays(ctx context.Context, userID string, year int, category leave.Category) (int, error) {
	return 0, nil
}

func (f *fakeBalanceService) Remaining(ctx context.Context, userID string, year int) (leave.Quotas, error) {
	return leave.Quotas{}, nil
}

func (f *fakeBalanceService) Balances(ctx context.Context, userID string, year int) (leave.BalanceResponse, error) {
	f.year = year
	return leave.BalanceResponse{Year: year, Remaining: leave.Quotas{CL: 6, SL: 6, EL: 12, ML: 180}}, nil
}

type fakeEntitlementService struct {
	userID string
	req    leave.SetQuotasRequest
}

func (f *fakeEntitlementService) GetOrCreate(ctx context.Context, userID string, year int) (leave.Entitlement, error) {
	return leave.Entitlement{}, nil
}

func (f *fakeEntitlementService) Get(ctx context.Context, actor user.Actor, userID string, year int) (leave.EntitlementResponse, error) {
	return leave.EntitlementResponse{UserID: userID, Year: year}, nil
}

func (f *fakeEntitlementService) SetQuotas(ctx context.Context, actor user.Actor, userID string, req leave.SetQuotasRequest) (leave.EntitlementResponse, error) {
	f.userID, f.req = userID, req
	return leave.EntitlementResponse{UserID: userID, Year: req.Year}, nil
}

func (f *fakeEntitlementService) ProvisionYear(ctx context.Context, year int) (int, error) {
	return 0, nil
}

type countingLimiter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (c *countingLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[key]++
	return c.hits[key] <= limit
}

type testServer struct {
	handler  http.Handler
	jwt      jwt.Service
	auth     *fakeAuthService
	requests *fakeRequestService
	balances *fakeBalanceService
	ents     *fakeEntitlementService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtSvc, err := jwt.NewJWTService("handler-test-secret", "1h")
	require.NoError(t, err)

	ts := &testServer{
		jwt:      jwtSvc,
		auth:     &fakeAuthService{},
		requests: &fakeRequestService{},
		balances: &fakeBalanceService{},
		ents:     &fakeEntitlementService{},
	}
	ts.handler = NewRouter(jwtSvc, Handlers{
		Auth:       NewAuthHandler(ts.auth, nil, "http://frontend.test"),
		Invitation: NewInvitationHandler(fakeInvitationService{}),
		User:       NewUserHandler(fakeUserService{}),
		Leave:      NewLeaveHandler(ts.requests, ts.balances, ts.ents, 1<<20),
	}, RouterOptions{
		AllowedOrigins: []string{"http://frontend.test"},
		Limiter:        &countingLimiter{hits: map[string]int{}},
		AuthRateLimit:  2,
	})
	return ts
}

func (ts *testServer) token(t *testing.T, id string, role user.Role) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(user.User{ID: id, Name: "Test", Email: id + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, target string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/health", nil, "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"ok": true}, resp.Data)
}

func TestRouter_Authentication(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/me/balances", nil, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/me/balances", nil, "", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("candidate on admin route", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/admin/requests", nil, "", ts.token(t, candidateID, user.RoleCandidate))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin on admin route", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/admin/users", nil, "", ts.token(t, adminID, user.RoleAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLeaveHandler_MyBalances(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, candidateID, user.RoleCandidate)

	rec := ts.do(t, http.MethodGet, "/api/v1/me/balances?year=2025", nil, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, ts.balances.year)

	rec = ts.do(t, http.MethodGet, "/api/v1/me/balances", nil, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Now().Year(), ts.balances.year)

	rec = ts.do(t, http.MethodGet, "/api/v1/me/balances?year=abc", nil, "", token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLeaveHandler_CreateRequest_Multipart(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("category", "SL"))
	require.NoError(t, mw.WriteField("startDate", "2025-03-03"))
	require.NoError(t, mw.WriteField("endDate", "2025-03-05"))
	require.NoError(t, mw.WriteField("reason", "flu"))
	part, err := mw.CreateFormFile("document", "note.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 sick note"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := ts.do(t, http.MethodPost, "/api/v1/me/requests", &body, mw.FormDataContentType(), ts.token(t, candidateID, user.RoleCandidate))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, ts.requests.created, 1)
	call := ts.requests.created[0]
	assert.Equal(t, candidateID, call.actor.ID)
	assert.Equal(t, "SL", call.req.Category)
	assert.Equal(t, "2025-03-03", call.req.StartDate)
	assert.Equal(t, "2025-03-05", call.req.EndDate)
	assert.Equal(t, "flu", call.req.Reason)
	require.NotNil(t, call.req.Document)
	assert.Equal(t, "note.pdf", call.req.Document.Filename)
	assert.Equal(t, "%PDF-1.4 sick note", call.documentBody)
}

func TestLeaveHandler_CreateRequest_JSON(t *testing.T) {
	ts := newTestServer(t)

	body := `{"category":"CL","startDate":"2025-03-03","endDate":"2025-03-03"}`
	rec := ts.do(t, http.MethodPost, "/api/v1/me/requests", strings.NewReader(body), "application/json", ts.token(t, candidateID, user.RoleCandidate))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, ts.requests.created, 1)
	assert.Nil(t, ts.requests.created[0].req.Document)
	assert.Equal(t, "CL", ts.requests.created[0].req.Category)
}

func TestLeaveHandler_CreateRequest_Errors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "insufficient balance",
			err:         &leave.InsufficientBalanceError{Category: leave.CategoryEarned, Remaining: 2},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "only 2 day(s) remaining for EL",
		},
		{
			name:        "exhausted balance",
			err:         &leave.InsufficientBalanceError{Category: leave.CategoryCasual, Remaining: 0},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "no balance left for CL leave",
		},
		{
			name:        "document required",
			err:         &leave.DocumentRequiredError{Category: leave.CategorySick, WorkingDays: 3},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "document required for SL (3 working days)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.requests.createErr = tt.err

			body := `{"category":"EL","startDate":"2025-03-03","endDate":"2025-03-07"}`
			rec := ts.do(t, http.MethodPost, "/api/v1/me/requests", strings.NewReader(body), "application/json", ts.token(t, candidateID, user.RoleCandidate))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestLeaveHandler_CreateRequest_BadJSON(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/me/requests", strings.NewReader("{"), "application/json", ts.token(t, candidateID, user.RoleCandidate))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.requests.created)
}

func TestLeaveHandler_GetMyRequest(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, candidateID, user.RoleCandidate)

	rec := ts.do(t, http.MethodGet, "/api/v1/me/requests/"+requestID, nil, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/me/requests/other", nil, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveHandler_Document(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, adminID, user.RoleAdmin)

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/requests/"+requestID+"/document", nil, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.requests.document = "%PDF-1.4 body"
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/requests/"+requestID+"/document", nil, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=note.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 body", rec.Body.String())
}

func TestLeaveHandler_Decide(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, adminID, user.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/requests/"+requestID+"/approve", strings.NewReader(`{"comment":"enjoy"}`), "application/json", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", ts.requests.lastAction)
	assert.Equal(t, requestID, ts.requests.lastID)
	assert.Equal(t, "enjoy", ts.requests.comment)
	assert.Equal(t, "Leave request approved", decodeResponse(t, rec).Message)

	ts.requests.decideErr = leave.ErrInvalidState
	rec = ts.do(t, http.MethodPost, "/api/v1/admin/requests/"+requestID+"/reject", strings.NewReader(`{"comment":"no"}`), "application/json", token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "rejected", ts.requests.lastAction)

	ts.requests.decideErr = leave.ErrCommentRequired
	rec = ts.do(t, http.MethodPost, "/api/v1/admin/requests/"+requestID+"/reject", nil, "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "", ts.requests.comment)
}

func TestLeaveHandler_ListRequests(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, adminID, user.RoleAdmin)

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/requests?status=pending&from=2025-01-01&candidateId="+candidateID, nil, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", ts.requests.query.Status)
	assert.Equal(t, "2025-01-01", ts.requests.query.From)
	assert.Equal(t, candidateID, ts.requests.query.CandidateID)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/requests?status=archived", nil, "", token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLeaveHandler_SetEntitlement(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/admin/entitlements/"+candidateID, strings.NewReader(`{"year":2025,"el":15}`), "application/json", ts.token(t, adminID, user.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, candidateID, ts.ents.userID)
	assert.Equal(t, 2025, ts.ents.req.Year)
	require.NotNil(t, ts.ents.req.EL)
	assert.Equal(t, 15, *ts.ents.req.EL)
	assert.Nil(t, ts.ents.req.CL)
}

func TestAuthHandler_LoginRateLimited(t *testing.T) {
	ts := newTestServer(t)
	body := `{"email":"jane@example.com","password":"secret123"}`

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", strings.NewReader(body), "application/json", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", strings.NewReader(body), "application/json", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthHandler_LoginResponse(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"jane@example.com","password":"secret123"}`), "application/json", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeResponse(t, rec).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "token", data["token"])
	assert.EqualValues(t, 1, data["expires_at"])
}

func TestInvitationHandler_Routes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, adminID, user.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/invites", strings.NewReader(`{"email":"new@example.com"}`), "application/json", token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/invites/"+requestID+"/resend", nil, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/invites/"+requestID+"/revoke", nil, "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.loginErr = auth.ErrInvalidCredentials

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`), "application/json", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_GoogleNotConfigured(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/auth/oauth/google", nil, "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
