//go:build integration

package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
	"waste-route-service/internal/platform/db"
	"waste-route-service/internal/ports"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func requireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
}

func startContainer(t *testing.T, req tc.ContainerRequest, port string) string {
	t.Helper()
	ctx := context.Background()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func TestPostgresRepositories(t *testing.T) {
	requireDocker(t)

	addr := startContainer(t, tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "waste",
			"POSTGRES_PASSWORD": "waste",
			"POSTGRES_DB":       "waste",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432")

	url := fmt.Sprintf("postgres://waste:waste@%s/waste?sslmode=disable", addr)

	runRepositorySuite(t, func(t *testing.T) (ports.BinRepository, ports.TruckRepository) {
		ctx := context.Background()
		conn, err := db.Open(ctx, url)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })

		for _, table := range []string{"bins", "trucks"} {
			_, err = conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)
			require.NoError(t, err)
		}

		stores := NewSQLStores(conn, DialectPostgres)
		require.NoError(t, stores.InitSchema(ctx))
		return stores.Bins, stores.Trucks
	})
}

func TestMongoRepositories(t *testing.T) {
	requireDocker(t)

	addr := startContainer(t, tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}, "27017")

	n := 0
	runRepositorySuite(t, func(t *testing.T) (ports.BinRepository, ports.TruckRepository) {
		ctx := context.Background()
		n++

		store, err := OpenMongo(ctx, "mongodb://"+addr, fmt.Sprintf("wastewise_test_%d", n))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close(context.Background()) })

		require.NoError(t, store.EnsureIndexes(ctx))
		return store.Bins(), store.Trucks()
	})
}
