//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dkovalev/deskflow-server/internal/model"
	repo "github.com/dkovalev/deskflow-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "deskflow_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/deskflow_test?sslmode=disable", host, port.Port())

	m.Run()
}

func connect(t *testing.T) *repo.Connection {
	t.Helper()
	db, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, db *repo.Connection, role model.Role) model.User {
	t.Helper()
	users := repo.NewUserRepository(db)
	user, err := users.Create(context.Background(), model.User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("%s@example.com", uuid.NewString()),
		Role:  role,
	})
	require.NoError(t, err)
	return user
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := connect(t)
	sessions := repo.NewSessionRepository(db)
	user := createUser(t, db, model.RoleClient)

	session := model.Session{
		ID:        uuid.New(),
		SubjectID: user.ID,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, sessions.Create(ctx, session))

	got, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.RotationCounter)
	assert.False(t, got.Revoked())

	require.NoError(t, sessions.Revoke(ctx, session.ID))
	got, err = sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, got.Revoked())
}

// The rotation CAS must admit exactly one winner under concurrency.
func TestSessionRepository_CompareAndIncrementRotation_Concurrent(t *testing.T) {
	ctx := context.Background()
	db := connect(t)
	sessions := repo.NewSessionRepository(db)
	user := createUser(t, db, model.RoleClient)

	session := model.Session{
		ID:        uuid.New(),
		SubjectID: user.ID,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, sessions.Create(ctx, session))

	type result struct {
		ok  bool
		err error
	}

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan result, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := sessions.CompareAndIncrementRotation(ctx, session.ID, 0)
			results <- result{ok: ok, err: err}
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for r := range results {
		require.NoError(t, r.err)
		if r.ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	got, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.RotationCounter)
}

func TestSessionRepository_CASRejectsRevoked(t *testing.T) {
	ctx := context.Background()
	db := connect(t)
	sessions := repo.NewSessionRepository(db)
	user := createUser(t, db, model.RoleClient)

	session := model.Session{
		ID:        uuid.New(),
		SubjectID: user.ID,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, sessions.Create(ctx, session))
	require.NoError(t, sessions.Revoke(ctx, session.ID))

	ok, err := sessions.CompareAndIncrementRotation(ctx, session.ID, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequestRepository_Ownership(t *testing.T) {
	ctx := context.Background()
	db := connect(t)
	requests := repo.NewRequestRepository(db)

	requester := createUser(t, db, model.RoleClient)
	assignee := createUser(t, db, model.RoleEmployee)
	stranger := createUser(t, db, model.RoleClient)

	request, err := requests.Create(ctx, model.ServiceRequest{
		ID:          uuid.New(),
		Title:       "vpn broken",
		Status:      model.RequestStatusOpen,
		RequesterID: requester.ID,
	})
	require.NoError(t, err)

	request.AssigneeID = &assignee.ID
	request.Status = model.RequestStatusInProgress
	_, err = requests.Update(ctx, request)
	require.NoError(t, err)

	ref := model.ResourceRef{Type: model.ResourceTypeRequest, ID: request.ID.String()}

	level, err := requests.LookupOwnership(ctx, ref, requester.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.AccessOwn, level)

	level, err = requests.LookupOwnership(ctx, ref, assignee.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.AccessAssigned, level)

	level, err = requests.LookupOwnership(ctx, ref, stranger.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.AccessNone, level)
}

func TestIdentityRepository_ProviderUniqueness(t *testing.T) {
	ctx := context.Background()
	db := connect(t)
	identities := repo.NewIdentityRepository(db)
	user := createUser(t, db, model.RoleClient)

	_, err := identities.Create(ctx, model.Identity{
		ID:             uuid.New(),
		UserID:         user.ID,
		Provider:       "github",
		ProviderUserID: "gh-1",
	})
	require.NoError(t, err)

	got, err := identities.GetByProvider(ctx, "github", "gh-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	_, err = identities.Create(ctx, model.Identity{
		ID:             uuid.New(),
		UserID:         user.ID,
		Provider:       "github",
		ProviderUserID: "gh-1",
	})
	require.Error(t, err)
}
