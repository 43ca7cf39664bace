package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-shop-api-server/internal/domains/users/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
	"github.com/Apurer/go-shop-api-server/internal/notifications"
)

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	copy := *user
	if existing, ok := f.users[user.Username]; ok {
		copy.ID = existing.ID
	} else if copy.ID == 0 {
		f.nextID++
		copy.ID = f.nextID
	}
	f.users[copy.Username] = &copy
	result := copy
	return &result, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := f.users[username]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeUserRepo) Delete(_ context.Context, username string) error {
	if _, ok := f.users[username]; !ok {
		return ports.ErrNotFound
	}
	delete(f.users, username)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	var list []*domain.User
	for _, u := range f.users {
		copy := *u
		list = append(list, &copy)
	}
	return list, nil
}

func (f *fakeUserRepo) ListInactiveSince(_ context.Context, cutoff time.Time) ([]*domain.User, error) {
	var list []*domain.User
	for _, u := range f.users {
		if u.LastSeen.Before(cutoff) {
			copy := *u
			list = append(list, &copy)
		}
	}
	return list, nil
}

type fakeSession struct {
	username  string
	expiresAt time.Time
}

type fakeSessionStore struct {
	byToken map[string]fakeSession
	byUser  map[string]string
	now     func() time.Time
}

func newFakeSessionStore(now func() time.Time) *fakeSessionStore {
	return &fakeSessionStore{byToken: map[string]fakeSession{}, byUser: map[string]string{}, now: now}
}

func (f *fakeSessionStore) Save(_ context.Context, username, token string, expiresAt time.Time) error {
	if old, ok := f.byUser[username]; ok {
		delete(f.byToken, old)
	}
	f.byToken[token] = fakeSession{username: username, expiresAt: expiresAt}
	f.byUser[username] = token
	return nil
}

func (f *fakeSessionStore) Lookup(_ context.Context, token string) (string, error) {
	sess, ok := f.byToken[token]
	if !ok || f.now().After(sess.expiresAt) {
		return "", ports.ErrSessionNotFound
	}
	return sess.username, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, username string) error {
	if token, ok := f.byUser[username]; ok {
		delete(f.byToken, token)
		delete(f.byUser, username)
	}
	return nil
}

func (f *fakeSessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	for token, sess := range f.byToken {
		if now.After(sess.expiresAt) {
			delete(f.byToken, token)
			delete(f.byUser, sess.username)
			purged++
		}
	}
	return purged, nil
}

type userFixture struct {
	svc      *Service
	repo     *fakeUserRepo
	sessions *fakeSessionStore
	notifier *recordingNotifier
	clock    time.Time
}

type recordingNotifier struct {
	events []notifications.Event
}

func (n *recordingNotifier) Enqueue(_ context.Context, event notifications.Event) error {
	n.events = append(n.events, event)
	return nil
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	fx := &userFixture{
		repo:     newFakeUserRepo(),
		notifier: &recordingNotifier{},
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	fx.sessions = newFakeSessionStore(func() time.Time { return fx.clock })
	fx.svc = NewService(fx.repo, fx.sessions, WithNotifier(fx.notifier))
	fx.svc.now = func() time.Time { return fx.clock }
	return fx
}

func (fx *userFixture) register(t *testing.T, username, password, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(0, username, password)
	require.NoError(t, err)
	require.NoError(t, user.UpdateProfile("", "", email, ""))
	created, err := fx.svc.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return created
}

func TestCreateUser_DefaultsToCustomerRole(t *testing.T) {
	fx := newUserFixture(t)

	created := fx.register(t, "alice", "secret", "alice@example.com")
	require.Equal(t, []string{domain.RoleCustomer}, created.Roles)
	require.False(t, created.IsAdmin())
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	fx := newUserFixture(t)

	user, err := domain.NewUser(0, "mallory", "secret")
	require.NoError(t, err)
	user.Roles = []string{"superuser"}
	_, err = fx.svc.CreateUser(context.Background(), user)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestLogin_IssuesTokenAndWelcomeEmail(t *testing.T) {
	fx := newUserFixture(t)
	fx.register(t, "alice", "secret", "alice@example.com")

	token, err := fx.svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.Len(t, fx.notifier.events, 1)
	require.Equal(t, notifications.KindWelcome, fx.notifier.events[0].Kind)
	require.Equal(t, "alice@example.com", fx.notifier.events[0].Email)

	stored, err := fx.repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, fx.clock, stored.LastSeen)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	fx := newUserFixture(t)
	fx.register(t, "alice", "secret", "")

	_, err := fx.svc.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrAuthentication)
	require.ErrorIs(t, err, ports.ErrInvalidCredentials)

	_, err = fx.svc.Login(context.Background(), "missing", "secret")
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = fx.svc.Login(context.Background(), "  ", "secret")
	require.ErrorIs(t, err, ErrAuthentication)
	require.Empty(t, fx.notifier.events)
}

func TestAuthenticate_ResolvesTokenAndTouchesUser(t *testing.T) {
	fx := newUserFixture(t)
	fx.register(t, "alice", "secret", "alice@example.com")

	token, err := fx.svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	fx.clock = fx.clock.Add(time.Hour)
	user, err := fx.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, fx.clock, user.LastSeen)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	fx := newUserFixture(t)
	fx.register(t, "alice", "secret", "")

	token, err := fx.svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	fx.clock = fx.clock.Add(DefaultSessionTTL + time.Minute)
	_, err = fx.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrAuthentication)
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestAuthenticate_UnknownOrBlankToken(t *testing.T) {
	fx := newUserFixture(t)

	_, err := fx.svc.Authenticate(context.Background(), "no-such-token")
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = fx.svc.Authenticate(context.Background(), "  ")
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	fx := newUserFixture(t)
	fx.register(t, "alice", "secret", "")

	token, err := fx.svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	fx.svc.Logout(context.Background(), "alice")
	_, err = fx.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestUpdate_PreservesIdentityAndRoles(t *testing.T) {
	fx := newUserFixture(t)
	created := fx.register(t, "alice", "secret", "alice@example.com")

	updated, err := fx.svc.Update(context.Background(), "alice", &domain.User{
		Password:  "newpass",
		FirstName: "Alice",
		Email:     "alice@new.example.com",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "alice", updated.Username)
	require.Equal(t, []string{domain.RoleCustomer}, updated.Roles)
	require.Equal(t, "alice@new.example.com", updated.Email)
}

func TestDelete_DropsSessionsToo(t *testing.T) {
	fx := newUserFixture(t)
	fx.register(t, "alice", "secret", "")

	token, err := fx.svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(context.Background(), "alice"))
	_, err = fx.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrAuthentication)
	_, err = fx.repo.GetByUsername(context.Background(), "alice")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListInactiveSince(t *testing.T) {
	fx := newUserFixture(t)
	fx.register(t, "alice", "secret", "alice@example.com")
	fx.register(t, "bob", "secret", "bob@example.com")

	_, err := fx.svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	inactive, err := fx.svc.ListInactiveSince(context.Background(), fx.clock)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	require.Equal(t, "bob", inactive[0].Username)
}
