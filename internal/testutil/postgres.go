// Package testutil поднимает PostgreSQL для интеграционных тестов.
//
// Если задан TEST_DATABASE_URL, используется эта база. Иначе запускается
// контейнер postgres:16-alpine через testcontainers. Когда недоступно ни то,
// ни другое, тест пропускается.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"it-inventory/pkg/database/postgresql"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresUser  = "inventory"
	postgresPass  = "inventory"
	postgresDB    = "inventory_test"
)

var (
	once      sync.Once
	sharedDSN string
	setupErr  error
)

// Postgres возвращает пул к мигрированной пустой базе.
// Контейнер поднимается один раз на тестовый бинарник, его убирает reaper testcontainers.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("интеграционные тесты пропущены в режиме -short")
	}

	once.Do(func() {
		sharedDSN, setupErr = resolveDSN()
		if setupErr == nil {
			setupErr = postgresql.Migrate(sharedDSN)
		}
	})
	if setupErr != nil {
		t.Skipf("PostgreSQL недоступен: %v", setupErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := postgresql.ConnectDB(ctx, sharedDSN, 5)
	if err != nil {
		t.Fatalf("не удалось подключиться к тестовой БД: %v", err)
	}
	t.Cleanup(pool.Close)

	Truncate(t, pool)
	return pool
}

func resolveDSN() (string, error) {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPass,
				"POSTGRES_DB":       postgresDB,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("не удалось запустить контейнер %s: %w", postgresImage, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPass, host, port.Port(), postgresDB), nil
}

// Truncate очищает все таблицы приложения и сбрасывает последовательности.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		TRUNCATE action_logs, device_tags, devices, device_models, employees,
			asset_types, manufacturers, device_statuses, departments, locations,
			suppliers, tags, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("не удалось очистить тестовую БД: %v", err)
	}
}
