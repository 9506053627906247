package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/models"
)

const testRealm = "ezcaretech"

// getTestConfig returns a minimal config for testing
func getTestConfig() *config.Config {
	return &config.Config{
		Realm:        testRealm,
		DefaultRoles: []string{config.DefaultRole, "nurse"},
	}
}

func strPtr(s string) *string { return &s }

// TestStoreWithSQLite tests store operations with SQLite
func TestStoreWithSQLite(t *testing.T) {
	testBasicOperations(t, "sqlite", nil)
}

// TestStoreWithPostgres tests store operations with PostgreSQL
func TestStoreWithPostgres(t *testing.T) {
	// Skip if running short tests or Docker is not available
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	testBasicOperations(t, "postgres", pgContainer)
}

// createFreshStore creates a new store instance for test isolation.
// For PostgreSQL each call creates a uniquely-named database in the container.
func createFreshStore(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) *Store {
	t.Helper()

	var dsn string
	switch driver {
	case "sqlite":
		dsn = ":memory:"
	case "postgres":
		dbName := "test_" + uuid.New().String()[:8]
		ctx := context.Background()

		createDBCmd := fmt.Sprintf("CREATE DATABASE %s", dbName)
		_, _, err := pgContainer.Exec(
			ctx,
			[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", createDBCmd},
		)
		require.NoError(t, err)

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf(
			"host=%s port=%s user=testuser password=testpass dbname=%s sslmode=disable",
			host, port.Port(), dbName,
		)

		t.Cleanup(func() {
			dropDBCmd := fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)
			_, _, _ = pgContainer.Exec(
				context.Background(),
				[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", dropDBCmd},
			)
		})
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	store, err := New(context.Background(), driver, dsn, getTestConfig())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// testBasicOperations runs the directory contract against one driver.
// Each subtest creates a fresh store instance for isolation.
func testBasicOperations(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) {
	ctx := context.Background()

	t.Run("SeedsRealmAndRoles", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		role, err := store.GetRole(ctx, testRealm, config.DefaultRole)
		require.NoError(t, err)
		require.NotNil(t, role)
		assert.Equal(t, config.DefaultRole, role.Name)

		missing, err := store.GetRole(ctx, testRealm, "no-such-role")
		require.NoError(t, err)
		assert.Nil(t, missing)

		// seeding again is harmless
		require.NoError(t, store.EnsureRealm(ctx, testRealm, []string{config.DefaultRole}))
		var count int64
		require.NoError(t, store.db.Model(&models.Role{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("AddAndGetUser", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		absent, err := store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		assert.Nil(t, absent)

		created, err := store.AddUser(ctx, testRealm, "alice")
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, created.Enabled)

		retrieved, err := store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, created.ID, retrieved.ID)

		// lookup is exact
		other, err := store.GetUserByUsername(ctx, testRealm, "ALICE")
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("AddUserTwiceReturnsExisting", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		first, err := store.AddUser(ctx, testRealm, "alice")
		require.NoError(t, err)
		second, err := store.AddUser(ctx, testRealm, "alice")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, store.db.Model(&models.User{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("SaveUser", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		user, err := store.AddUser(ctx, testRealm, "alice")
		require.NoError(t, err)

		user.FirstName = strPtr("Alice")
		user.LastName = strPtr("Kim")
		user.Email = strPtr("a@x")
		user.Enabled = true
		user.EmailVerified = true
		require.NoError(t, store.SaveUser(ctx, user))

		retrieved, err := store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", *retrieved.FirstName)
		assert.Equal(t, "Kim", *retrieved.LastName)
		assert.Equal(t, "a@x", *retrieved.Email)
		assert.True(t, retrieved.Enabled)
		assert.True(t, retrieved.EmailVerified)

		assert.ErrorIs(t, store.SaveUser(ctx, &models.User{}), ErrInvalidUser)
	})

	t.Run("SetSingleAttribute", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		user, err := store.AddUser(ctx, testRealm, "alice")
		require.NoError(t, err)

		require.NoError(t, store.SetSingleAttribute(ctx, user, "positionName", strPtr("Manager")))
		require.NoError(t, store.SetSingleAttribute(ctx, user, "deptDepth", strPtr("2")))
		require.NoError(t, store.SetSingleAttribute(ctx, user, "positionName", strPtr("Director")))

		retrieved, err := store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"positionName": "Director",
			"deptDepth":    "2",
		}, retrieved.AttributeMap())

		// nil clears
		require.NoError(t, store.SetSingleAttribute(ctx, user, "deptDepth", nil))
		require.NoError(t, store.SetSingleAttribute(ctx, user, "never-set", nil))

		retrieved, err = store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		_, ok := retrieved.Attribute("deptDepth")
		assert.False(t, ok)
		value, ok := retrieved.Attribute("positionName")
		assert.True(t, ok)
		assert.Equal(t, "Director", value)
	})

	t.Run("GrantRoleIsIdempotent", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		user, err := store.AddUser(ctx, testRealm, "alice")
		require.NoError(t, err)
		role, err := store.GetRole(ctx, testRealm, config.DefaultRole)
		require.NoError(t, err)

		require.NoError(t, store.GrantRole(ctx, user, role))
		require.NoError(t, store.GrantRole(ctx, user, role))

		retrieved, err := store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{config.DefaultRole}, retrieved.RoleNames())
		assert.True(t, retrieved.HasRole(config.DefaultRole))
	})

	t.Run("TransactionRollsBack", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		errBoom := errors.New("boom")

		err := store.Transaction(ctx, func(tx core.Directory) error {
			if _, err := tx.AddUser(ctx, testRealm, "alice"); err != nil {
				return err
			}
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		user, err := store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("TransactionCommits", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		err := store.Transaction(ctx, func(tx core.Directory) error {
			user, err := tx.AddUser(ctx, testRealm, "alice")
			if err != nil {
				return err
			}
			return tx.SetSingleAttribute(ctx, user, "userSeq", strPtr("42"))
		})
		require.NoError(t, err)

		user, err := store.GetUserByUsername(ctx, testRealm, "alice")
		require.NoError(t, err)
		require.NotNil(t, user)
		value, _ := user.Attribute("userSeq")
		assert.Equal(t, "42", value)
	})

	t.Run("UnknownRealm", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		_, err := store.GetUserByUsername(ctx, "other", "alice")
		assert.ErrorIs(t, err, ErrRealmNotFound)
		_, err = store.AddUser(ctx, "other", "alice")
		assert.ErrorIs(t, err, ErrRealmNotFound)
		_, err = store.GetRole(ctx, "other", config.DefaultRole)
		assert.ErrorIs(t, err, ErrRealmNotFound)
	})

	t.Run("ConcurrentAddUser", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		const workers = 8
		ids := make([]string, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				user, err := store.AddUser(ctx, testRealm, "alice")
				if assert.NoError(t, err) {
					ids[i] = user.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
	})

	t.Run("CountUsers", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		count, err := store.CountUsers(ctx, testRealm)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		for _, name := range []string{"alice", "bob", "alice"} {
			_, err := store.AddUser(ctx, testRealm, name)
			require.NoError(t, err)
		}

		count, err = store.CountUsers(ctx, testRealm)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Health", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		assert.NoError(t, store.Health(ctx))
	})
}

// TestDriverFactory tests the driver factory pattern
func TestDriverFactory(t *testing.T) {
	tests := []struct {
		name        string
		driver      string
		dsn         string
		expectError bool
	}{
		{
			name:        "SQLite valid",
			driver:      "sqlite",
			dsn:         ":memory:",
			expectError: false,
		},
		{
			name:        "Unsupported driver",
			driver:      "mysql",
			dsn:         "user:pass@tcp(localhost:3306)/dbname",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialector, err := GetDialector(tt.driver, tt.dsn)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, dialector)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, dialector)
			}
		})
	}
}

// TestRegisterDriver tests registering custom drivers
func TestRegisterDriver(t *testing.T) {
	customDriverCalled := false
	RegisterDriver("custom", func(dsn string) gorm.Dialector {
		customDriverCalled = true
		return nil
	})
	t.Cleanup(func() { delete(driverFactories, "custom") })

	dialector, err := GetDialector("custom", "test-dsn")
	assert.NoError(t, err)
	assert.True(t, customDriverCalled)
	assert.Nil(t, dialector)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	store, err := New(context.Background(), "mysql", "dsn", getTestConfig())
	assert.Error(t, err)
	assert.Nil(t, store)
}

// BenchmarkStoreOperations benchmarks the directory lookups used on every login
func BenchmarkStoreOperations(b *testing.B) {
	ctx := context.Background()
	store, err := New(ctx, "sqlite", ":memory:", getTestConfig())
	require.NoError(b, err)

	b.Run("AddUser", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = store.AddUser(ctx, testRealm, fmt.Sprintf("user%d", i))
		}
	})

	b.Run("GetUserByUsername", func(b *testing.B) {
		_, _ = store.AddUser(ctx, testRealm, "benchuser")

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = store.GetUserByUsername(ctx, testRealm, "benchuser")
		}
	})
}
