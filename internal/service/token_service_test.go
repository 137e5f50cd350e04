package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dkovalev/deskflow-server/internal/mocks"
	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/testutil"
)

func activeSession(id, subjectID uuid.UUID, counter int64) model.Session {
	now := time.Now()
	return model.Session{
		ID:              id,
		SubjectID:       subjectID,
		RotationCounter: counter,
		IssuedAt:        now.Add(-time.Hour),
		ExpiresAt:       now.Add(time.Hour),
	}
}

func TestTokenService_Issue(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.New()

	manager := &mocks.TokenManager{}
	sessions := &mocks.SessionStore{}
	users := &mocks.UserStore{}

	sessions.On("Create", ctx, mock.MatchedBy(func(s model.Session) bool {
		return s.SubjectID == subjectID && s.RotationCounter == 0
	})).Return(nil).Once()
	manager.On("GenerateAccessToken", subjectID, model.RoleClient, mock.Anything).Return("access", nil).Once()
	manager.On("GenerateRefreshToken", subjectID, mock.Anything, int64(0)).Return("refresh", nil).Once()

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	access, refresh, err := svc.Issue(ctx, subjectID, model.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, "access", access)
	assert.Equal(t, "refresh", refresh)
	sessions.AssertExpectations(t)
	manager.AssertExpectations(t)
}

func TestTokenService_Issue_StoreError(t *testing.T) {
	ctx := context.Background()

	manager := &mocks.TokenManager{}
	sessions := &mocks.SessionStore{}
	users := &mocks.UserStore{}

	sessions.On("Create", ctx, mock.Anything).Return(assert.AnError).Once()

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	_, _, err := svc.Issue(ctx, uuid.New(), model.RoleClient)
	require.Error(t, err)
}

func TestTokenService_Refresh_Success(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.New()
	sessionID := uuid.New()

	manager := &mocks.TokenManager{}
	sessions := &mocks.SessionStore{}
	users := &mocks.UserStore{}

	manager.On("ParseRefreshToken", "refresh-old").Return(model.RefreshClaims{
		SubjectID:       subjectID,
		SessionID:       sessionID,
		RotationCounter: 3,
	}, nil).Once()
	sessions.On("GetByID", ctx, sessionID).Return(activeSession(sessionID, subjectID, 3), nil).Once()
	sessions.On("CompareAndIncrementRotation", ctx, sessionID, int64(3)).Return(true, nil).Once()
	users.On("GetByID", ctx, subjectID).Return(model.User{ID: subjectID, Role: model.RoleEmployee}, nil).Once()
	manager.On("GenerateAccessToken", subjectID, model.RoleEmployee, sessionID).Return("access-new", nil).Once()
	manager.On("GenerateRefreshToken", subjectID, sessionID, int64(4)).Return("refresh-new", nil).Once()

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	access, refresh, err := svc.Refresh(ctx, "refresh-old")
	require.NoError(t, err)
	assert.Equal(t, "access-new", access)
	assert.Equal(t, "refresh-new", refresh)
	sessions.AssertExpectations(t)
}

func TestTokenService_Refresh_CounterMismatchRevokesSession(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.New()
	sessionID := uuid.New()

	manager := &mocks.TokenManager{}
	sessions := &mocks.SessionStore{}
	users := &mocks.UserStore{}

	manager.On("ParseRefreshToken", "refresh-stale").Return(model.RefreshClaims{
		SubjectID:       subjectID,
		SessionID:       sessionID,
		RotationCounter: 2,
	}, nil).Once()
	sessions.On("GetByID", ctx, sessionID).Return(activeSession(sessionID, subjectID, 3), nil).Once()
	sessions.On("CompareAndIncrementRotation", ctx, sessionID, int64(2)).Return(false, nil).Once()
	sessions.On("Revoke", ctx, sessionID).Return(nil).Once()

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	_, _, err := svc.Refresh(ctx, "refresh-stale")
	require.ErrorIs(t, err, model.ErrTokenReuse)
	sessions.AssertExpectations(t)
}

func TestTokenService_Refresh_RevokedSession(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.New()
	sessionID := uuid.New()
	now := time.Now()

	manager := &mocks.TokenManager{}
	sessions := &mocks.SessionStore{}
	users := &mocks.UserStore{}

	manager.On("ParseRefreshToken", "refresh").Return(model.RefreshClaims{
		SubjectID: subjectID,
		SessionID: sessionID,
	}, nil).Once()
	revoked := activeSession(sessionID, subjectID, 0)
	revoked.RevokedAt = &now
	sessions.On("GetByID", ctx, sessionID).Return(revoked, nil).Once()

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	_, _, err := svc.Refresh(ctx, "refresh")
	require.ErrorIs(t, err, model.ErrSessionRevoked)
}

func TestTokenService_Refresh_UnknownSession(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()

	manager := &mocks.TokenManager{}
	sessions := &mocks.SessionStore{}
	users := &mocks.UserStore{}

	manager.On("ParseRefreshToken", "refresh").Return(model.RefreshClaims{
		SubjectID: uuid.New(),
		SessionID: sessionID,
	}, nil).Once()
	sessions.On("GetByID", ctx, sessionID).Return(model.Session{}, model.ErrNotFound).Once()

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	_, _, err := svc.Refresh(ctx, "refresh")
	require.ErrorIs(t, err, model.ErrSessionRevoked)
}

func TestTokenService_Refresh_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.New()
	sessionID := uuid.New()

	manager := &mocks.TokenManager{}
	sessions := &mocks.SessionStore{}
	users := &mocks.UserStore{}

	manager.On("ParseRefreshToken", "refresh").Return(model.RefreshClaims{
		SubjectID: subjectID,
		SessionID: sessionID,
	}, nil).Once()
	expired := activeSession(sessionID, subjectID, 0)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	sessions.On("GetByID", ctx, sessionID).Return(expired, nil).Once()

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	_, _, err := svc.Refresh(ctx, "refresh")
	require.ErrorIs(t, err, model.ErrTokenExpired)
}

// fakeSessionStore implements the atomic compare-and-increment contract
// in memory so concurrent refresh behavior can be exercised for real.
type fakeSessionStore struct {
	mu      sync.Mutex
	session model.Session
}

func (f *fakeSessionStore) Create(_ context.Context, session model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = session
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session.ID != id {
		return model.Session{}, model.ErrNotFound
	}
	return f.session, nil
}

func (f *fakeSessionStore) CompareAndIncrementRotation(_ context.Context, id uuid.UUID, expected int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session.ID != id || f.session.Revoked() || f.session.RotationCounter != expected {
		return false, nil
	}
	f.session.RotationCounter++
	return true, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session.ID == id && f.session.RevokedAt == nil {
		now := time.Now()
		f.session.RevokedAt = &now
	}
	return nil
}

func (f *fakeSessionStore) RevokeAllBySubject(ctx context.Context, subjectID uuid.UUID) error {
	return f.Revoke(ctx, f.session.ID)
}

// Two refreshes racing on the same valid token must yield exactly one
// success and one reuse detection, and the session must end up revoked.
func TestTokenService_Refresh_ConcurrentOneWinner(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.New()
	sessionID := uuid.New()

	sessions := &fakeSessionStore{session: activeSession(sessionID, subjectID, 5)}

	manager := &mocks.TokenManager{}
	users := &mocks.UserStore{}

	manager.On("ParseRefreshToken", "refresh").Return(model.RefreshClaims{
		SubjectID:       subjectID,
		SessionID:       sessionID,
		RotationCounter: 5,
	}, nil)
	users.On("GetByID", mock.Anything, subjectID).Return(model.User{ID: subjectID, Role: model.RoleClient}, nil)
	manager.On("GenerateAccessToken", subjectID, model.RoleClient, sessionID).Return("access", nil)
	manager.On("GenerateRefreshToken", subjectID, sessionID, int64(6)).Return("refresh-new", nil)

	svc := NewTokenService(manager, sessions, users, testutil.MakeNoopLogger())

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, _, err := svc.Refresh(ctx, "refresh")
			results <- err
		}()
	}

	var successes, reuses int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			successes++
		default:
			require.ErrorIs(t, err, model.ErrTokenReuse)
			reuses++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, reuses)
	assert.True(t, sessions.session.Revoked())
	assert.EqualValues(t, 6, sessions.session.RotationCounter)
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()

	sessions := &mocks.SessionStore{}
	sessions.On("Revoke", ctx, sessionID).Return(nil).Once()

	svc := NewTokenService(&mocks.TokenManager{}, sessions, &mocks.UserStore{}, testutil.MakeNoopLogger())

	require.NoError(t, svc.Revoke(ctx, sessionID))
	sessions.AssertExpectations(t)
}
