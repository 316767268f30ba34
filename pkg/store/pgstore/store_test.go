package pgstore_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
	"github.com/codeready-toolchain/practice-scheduler/pkg/store/pgstore"
)

// startContainer boots a disposable Postgres instance for one test; unlike a
// shared-container-per-package setup, each test gets its own container, so
// there's no need for per-test schema isolation.
func startContainer(t *testing.T) pgstore.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping testcontainers-backed pgstore test in -short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("scheduler"),
		tcpostgres.WithUsername("scheduler"),
		tcpostgres.WithPassword("scheduler"),
	)
	if err != nil {
		t.Skipf("docker unavailable, skipping pgstore integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	port, err := strconv.Atoi(mappedPort.Port())
	require.NoError(t, err)

	return pgstore.Config{
		Host:            host,
		Port:            port,
		User:            "scheduler",
		Password:        "scheduler",
		Database:        "scheduler",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 15 * time.Minute,
	}
}

func TestStore_OpenMigratesAndRoundTripsProblem(t *testing.T) {
	cfg := startContainer(t)
	ctx := context.Background()

	s, err := pgstore.Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	problem := &models.Problem{
		ProblemID:  "two-sum",
		LeetCodeID: 1,
		Title:      "Two Sum",
		Tags:       []string{"Array", "Hash Table"},
		Difficulty: models.DifficultyEasy,
		BoxLevel:   1,
	}
	require.NoError(t, s.Problems().Put(ctx, problem))

	got, err := s.Problems().Get(ctx, "two-sum")
	require.NoError(t, err)
	require.Equal(t, problem.Title, got.Title)
	require.Equal(t, problem.Tags, got.Tags)

	status, err := s.Health(ctx)
	require.NoError(t, err)
	require.Equal(t, "healthy", status.Status)
}
