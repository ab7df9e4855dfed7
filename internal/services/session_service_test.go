package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

type fakeSessionRepo struct {
	repositories.SessionRepository
	sessions    map[string]*models.GuestSession
	deactivated []string
}

func (f *fakeSessionRepo) GetByToken(token string) (*models.GuestSession, error) {
	if session, ok := f.sessions[token]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSessionRepo) Deactivate(executor repositories.SQLExecutor, token string) error {
	f.deactivated = append(f.deactivated, token)
	if session, ok := f.sessions[token]; ok {
		session.IsActive = false
		return nil
	}
	return repositories.ErrNotFound
}

func newSessionServiceForTest(repo *fakeSessionRepo) SessionService {
	return NewSessionService(repo, nil, nil, nil, nil, 4*time.Hour)
}

func TestSessionValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		repo := &fakeSessionRepo{sessions: map[string]*models.GuestSession{
			"live": {SessionToken: "live", IsActive: true, ExpiresAt: time.Now().Add(time.Hour)},
		}}
		svc := newSessionServiceForTest(repo)

		session, err := svc.Validate(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, "live", session.SessionToken)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := newSessionServiceForTest(&fakeSessionRepo{})
		_, err := svc.Validate(ctx, "")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := newSessionServiceForTest(&fakeSessionRepo{})
		_, err := svc.Validate(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("expired session is deactivated lazily", func(t *testing.T) {
		repo := &fakeSessionRepo{sessions: map[string]*models.GuestSession{
			"stale": {SessionToken: "stale", IsActive: true, ExpiresAt: time.Now().Add(-time.Minute)},
		}}
		svc := newSessionServiceForTest(repo)

		_, err := svc.Validate(ctx, "stale")
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Contains(t, repo.deactivated, "stale")

		// repeated validation still reports expiry, without re-deactivating
		_, err = svc.Validate(ctx, "stale")
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Len(t, repo.deactivated, 1)
	})

	t.Run("ended session", func(t *testing.T) {
		repo := &fakeSessionRepo{sessions: map[string]*models.GuestSession{
			"ended": {SessionToken: "ended", IsActive: false, ExpiresAt: time.Now().Add(time.Hour)},
		}}
		svc := newSessionServiceForTest(repo)

		_, err := svc.Validate(ctx, "ended")
		assert.ErrorIs(t, err, ErrSessionInactive)
	})
}

func TestSessionUpdateRejectsInvalidCart(t *testing.T) {
	repo := &fakeSessionRepo{sessions: map[string]*models.GuestSession{
		"live": {SessionToken: "live", IsActive: true, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := newSessionServiceForTest(repo)

	badCart := models.Cart{{MenuItemID: 1, Quantity: 0}}
	_, err := svc.Update(context.Background(), "live", UpdateSessionRequest{Cart: &badCart})
	assert.ErrorIs(t, err, ErrValidation)
}
