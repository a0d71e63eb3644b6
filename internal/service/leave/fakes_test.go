package leave

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

type passThroughTx struct{}

func (passThroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type entitlementKey struct {
	userID string
	year   int
}

type fakeEntitlementRepository struct {
	mu     sync.Mutex
	rows   map[entitlementKey]leave.Entitlement
	locks  int
	ensure int
}

func newFakeEntitlementRepository() *fakeEntitlementRepository {
	return &fakeEntitlementRepository{rows: map[entitlementKey]leave.Entitlement{}}
}

func (f *fakeEntitlementRepository) EnsureExists(ctx context.Context, userID string, year int, quotas leave.Quotas) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure++
	k := entitlementKey{userID, year}
	if _, ok := f.rows[k]; !ok {
		f.rows[k] = leave.Entitlement{ID: uuid.NewString(), UserID: userID, Year: year, Quotas: quotas}
	}
	return nil
}

func (f *fakeEntitlementRepository) GetByUserAndYear(ctx context.Context, userID string, year int) (leave.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[entitlementKey{userID, year}]
	if !ok {
		return leave.Entitlement{}, leave.ErrEntitlementNotFound
	}
	return e, nil
}

func (f *fakeEntitlementRepository) GetByUserAndYearForUpdate(ctx context.Context, userID string, year int) (leave.Entitlement, error) {
	f.mu.Lock()
	f.locks++
	f.mu.Unlock()
	return f.GetByUserAndYear(ctx, userID, year)
}

func (f *fakeEntitlementRepository) UpdateQuotas(ctx context.Context, id string, quotas leave.Quotas) (leave.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, e := range f.rows {
		if e.ID == id {
			e.Quotas = quotas
			f.rows[k] = e
			return e, nil
		}
	}
	return leave.Entitlement{}, leave.ErrEntitlementNotFound
}

func (f *fakeEntitlementRepository) set(userID string, year int, q leave.Quotas) {
	f.rows[entitlementKey{userID, year}] = leave.Entitlement{ID: uuid.NewString(), UserID: userID, Year: year, Quotas: q}
}

type fakeLeaveRequestRepository struct {
	mu        sync.Mutex
	requests  []leave.LeaveRequest
	createErr error
}

func (f *fakeLeaveRequestRepository) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return leave.LeaveRequest{}, f.createErr
	}
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.requests = append(f.requests, r)
	return r, nil
}

func (f *fakeLeaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
}

func (f *fakeLeaveRequestRepository) ListByUser(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	return f.List(ctx, leave.RequestFilter{UserID: &userID})
}

func (f *fakeLeaveRequestRepository) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.From != nil && r.StartDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.EndDate.After(*filter.To) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLeaveRequestRepository) SumApprovedDays(ctx context.Context, userID string, year int) (leave.Quotas, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var used leave.Quotas
	for _, r := range f.requests {
		if r.UserID == userID && r.Status == leave.StatusApproved && r.StartDate.Year() == year {
			used.Set(r.Category, used.Of(r.Category)+r.WorkingDays)
		}
	}
	return used, nil
}

func (f *fakeLeaveRequestRepository) Decide(ctx context.Context, id string, target leave.Status, decidedBy string, comment string) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.requests {
		if r.ID != id {
			continue
		}
		if r.Status != leave.StatusPending {
			return leave.LeaveRequest{}, leave.ErrInvalidState
		}
		now := time.Now()
		r.Status = target
		r.AdminComment = &comment
		r.DecidedBy = &decidedBy
		r.DecidedAt = &now
		f.requests[i] = r
		return r, nil
	}
	return leave.LeaveRequest{}, leave.ErrInvalidState
}

// add stores a request directly, bypassing validation.
func (f *fakeLeaveRequestRepository) add(userID string, c leave.Category, start time.Time, days int, status leave.Status) leave.LeaveRequest {
	r := leave.LeaveRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    c,
		StartDate:   start,
		EndDate:     start,
		WorkingDays: days,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	f.requests = append(f.requests, r)
	return r
}

type fakeUserRepository struct {
	users []user.User
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	u.ID = uuid.NewString()
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepository) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type recordedAudit struct {
	actorID  string
	action   audit.Action
	entityID string
	note     string
}

type fakeRecorder struct {
	entries []recordedAudit
}

func (f *fakeRecorder) Record(ctx context.Context, actorID string, action audit.Action, entityType, entityID string, note string) {
	f.entries = append(f.entries, recordedAudit{actorID: actorID, action: action, entityID: entityID, note: note})
}

type fakeFileService struct {
	files     map[string]string
	uploadErr error
	deleted   []string
}

func newFakeFileService() *fakeFileService {
	return &fakeFileService{files: map[string]string{}}
}

func (f *fakeFileService) UploadLeaveDocument(ctx context.Context, userID string, doc leave.DocumentUpload) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(doc.Content)
	if err != nil {
		return "", err
	}
	key := "leave/" + userID + "/" + uuid.NewString() + ".pdf"
	f.files[key] = string(data)
	return key, nil
}

func (f *fakeFileService) OpenLeaveDocument(ctx context.Context, key string) (leave.DocumentFile, error) {
	data, ok := f.files[key]
	if !ok {
		return leave.DocumentFile{}, leave.ErrDocumentNotFound
	}
	return leave.DocumentFile{Name: key, ContentType: "application/pdf", Content: io.NopCloser(strings.NewReader(data))}, nil
}

func (f *fakeFileService) DeleteFile(ctx context.Context, key string) error {
	if _, ok := f.files[key]; !ok {
		return errors.New("missing file")
	}
	delete(f.files, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
