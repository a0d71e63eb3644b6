package invitation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/config"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInviteRepository struct {
	invites []invitation.Invite
}

func (f *fakeInviteRepository) Create(ctx context.Context, inv invitation.Invite) (invitation.Invite, error) {
	inv.ID = uuid.NewString()
	inv.CreatedAt = time.Now()
	f.invites = append(f.invites, inv)
	return inv, nil
}

func (f *fakeInviteRepository) GetByID(ctx context.Context, id string) (invitation.Invite, error) {
	for _, inv := range f.invites {
		if inv.ID == id {
			return inv, nil
		}
	}
	return invitation.Invite{}, invitation.ErrInviteNotFound
}

func (f *fakeInviteRepository) GetByTokenForUpdate(ctx context.Context, token string) (invitation.Invite, error) {
	for _, inv := range f.invites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return invitation.Invite{}, invitation.ErrInvalidInviteToken
}

func (f *fakeInviteRepository) List(ctx context.Context) ([]invitation.Invite, error) {
	return f.invites, nil
}

func (f *fakeInviteRepository) MarkUsed(ctx context.Context, id string) error {
	for i := range f.invites {
		if f.invites[i].ID == id {
			f.invites[i].Used = true
			return nil
		}
	}
	return invitation.ErrInviteNotFound
}

type fakeUserRepository struct {
	emails map[string]bool
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (f *fakeUserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (f *fakeUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	return u, nil
}
func (f *fakeUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.emails[email], nil
}
func (f *fakeUserRepository) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	return nil, nil
}

type sentEmail struct {
	to, link  string
	expiresAt time.Time
}

type fakeEmailService struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmailService) SendInvitation(to, link string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to, link, expiresAt})
	return nil
}

type fakeRecorder struct {
	actions []audit.Action
	notes   []string
}

func (f *fakeRecorder) Record(ctx context.Context, actorID string, action audit.Action, entityType, entityID string, note string) {
	f.actions = append(f.actions, action)
	f.notes = append(f.notes, note)
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type invitationFixture struct {
	svc     *InvitationServiceImpl
	invites *fakeInviteRepository
	users   *fakeUserRepository
	email   *fakeEmailService
	audit   *fakeRecorder
	admin   user.Actor
}

func newInvitationFixture() *invitationFixture {
	f := &invitationFixture{
		invites: &fakeInviteRepository{},
		users:   &fakeUserRepository{emails: map[string]bool{}},
		email:   &fakeEmailService{},
		audit:   &fakeRecorder{},
		admin:   user.Actor{ID: uuid.NewString(), Role: user.RoleAdmin},
	}
	svc := NewInvitationService(f.invites, f.users, f.email, f.audit, config.InvitationConfig{
		Expiry:  7 * 24 * time.Hour,
		BaseURL: "http://localhost:5173/register",
	}).(*InvitationServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	svc.dispatch = func(fn func()) { fn() }
	f.svc = svc
	return f
}

func TestCreate_IssuesInvite(t *testing.T) {
	f := newInvitationFixture()

	resp, err := f.svc.Create(context.Background(), f.admin, invitation.CreateInviteRequest{Email: "  New.Hire@Example.com "})
	require.NoError(t, err)

	assert.Equal(t, "new.hire@example.com", resp.Email)
	assert.True(t, validator.IsValidUUID(resp.Token))
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), resp.ExpiresAt)
	assert.Equal(t, "http://localhost:5173/register?token="+resp.Token, resp.Link)
	assert.False(t, resp.Used)
	assert.False(t, resp.Expired)

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "new.hire@example.com", f.email.sent[0].to)
	assert.Equal(t, resp.Link, f.email.sent[0].link)

	assert.Equal(t, []audit.Action{audit.ActionInviteSent}, f.audit.actions)
	assert.Equal(t, "Email: new.hire@example.com", f.audit.notes[0])
}

func TestCreate_EmailFailureDoesNotFail(t *testing.T) {
	f := newInvitationFixture()
	f.email.err = errors.New("smtp unreachable")

	_, err := f.svc.Create(context.Background(), f.admin, invitation.CreateInviteRequest{Email: "a@example.com"})
	require.NoError(t, err)
	assert.Len(t, f.invites.invites, 1)
	assert.Len(t, f.audit.actions, 1)
}

func TestCreate_Rejections(t *testing.T) {
	f := newInvitationFixture()
	f.users.emails["taken@example.com"] = true

	_, err := f.svc.Create(context.Background(), user.Actor{ID: "c1", Role: user.RoleCandidate}, invitation.CreateInviteRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = f.svc.Create(context.Background(), f.admin, invitation.CreateInviteRequest{Email: "not-an-email"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	_, err = f.svc.Create(context.Background(), f.admin, invitation.CreateInviteRequest{Email: "Taken@example.com"})
	assert.ErrorIs(t, err, invitation.ErrEmailAlreadyRegistered)

	assert.Empty(t, f.invites.invites)
	assert.Empty(t, f.email.sent)
}

func TestList_MarksExpired(t *testing.T) {
	f := newInvitationFixture()
	f.invites.invites = []invitation.Invite{
		{ID: uuid.NewString(), Email: "old@example.com", Token: "t1", ExpiresAt: fixedNow.Add(-time.Hour)},
		{ID: uuid.NewString(), Email: "new@example.com", Token: "t2", ExpiresAt: fixedNow.Add(time.Hour)},
	}

	list, err := f.svc.List(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Expired)
	assert.False(t, list[1].Expired)
	assert.Equal(t, "http://localhost:5173/register?token=t2", list[1].Link)
}

func TestResend(t *testing.T) {
	f := newInvitationFixture()
	created, err := f.svc.Create(context.Background(), f.admin, invitation.CreateInviteRequest{Email: "a@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Resend(context.Background(), f.admin, created.ID))
	require.Len(t, f.email.sent, 2)
	assert.Equal(t, f.email.sent[0].link, f.email.sent[1].link)
	assert.Equal(t, audit.ActionInviteResent, f.audit.actions[1])

	require.NoError(t, f.svc.Revoke(context.Background(), f.admin, created.ID))
	err = f.svc.Resend(context.Background(), f.admin, created.ID)
	assert.ErrorIs(t, err, invitation.ErrInviteAlreadyUsed)

	err = f.svc.Resend(context.Background(), f.admin, "nope")
	assert.ErrorIs(t, err, invitation.ErrInviteNotFound)
}

func TestRevoke(t *testing.T) {
	f := newInvitationFixture()
	created, err := f.svc.Create(context.Background(), f.admin, invitation.CreateInviteRequest{Email: "a@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(context.Background(), f.admin, created.ID))
	assert.True(t, f.invites.invites[0].Used)
	assert.Equal(t, audit.ActionInviteRevoked, f.audit.actions[len(f.audit.actions)-1])

	err = f.svc.Revoke(context.Background(), f.admin, uuid.NewString())
	assert.ErrorIs(t, err, invitation.ErrInviteNotFound)

	err = f.svc.Revoke(context.Background(), user.Actor{ID: "c", Role: user.RoleCandidate}, created.ID)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}
