// Package testhelpers starts the PostgreSQL container used by integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/database"
)

const (
	postgresImage = "postgres:16-alpine"
	pgUser        = "digest"
	pgPassword    = "digest_test"
	pgDatabase    = "status_digest_test"
	startTimeout  = 90 * time.Second
)

// Postgres is a running container with the schema migrated.
type Postgres struct {
	Container testcontainers.Container
	DB        *database.DB
	URL       string
}

var (
	shared     *Postgres
	sharedErr  error
	sharedOnce sync.Once
)

// SharedPostgres returns the container for this test binary, starting it on
// first use. Tests that need isolation truncate the tables they touch.
func SharedPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("requires Docker")
	}
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		shared, sharedErr = StartPostgres(ctx)
	})
	if sharedErr != nil {
		t.Fatalf("start postgres: %v", sharedErr)
	}
	return shared
}

// StartPostgres starts a fresh container and applies the migrations.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			// The server logs "ready" once for the init run and once for real.
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(startTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	url, err := connectionURL(ctx, container)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	db, err := database.OpenURL(ctx, url, 5, zap.NewNop())
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if _, err := db.Migrate(); err != nil {
		db.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Postgres{Container: container, DB: db, URL: url}, nil
}

func connectionURL(ctx context.Context, container testcontainers.Container) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pgUser, pgPassword, host, port.Port(), pgDatabase), nil
}
