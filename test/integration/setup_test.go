package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardionova/cardionova/internal/domain/assessment"
	"github.com/cardionova/cardionova/internal/domain/identity"
	"github.com/cardionova/cardionova/internal/platform/db"
	"github.com/cardionova/cardionova/internal/platform/ml"
)

// testDB holds the shared database infrastructure for integration tests.
type testDB struct {
	Pool *pgxpool.Pool
}

// globalDB is the package-level test database, initialized once in TestMain.
var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr, cleanup, err := startPostgresContainer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup postgres container: %v\n", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "create pool: %v\n", err)
		os.Exit(1)
	}

	if _, err := db.NewMigrator(pool, findMigrationsDir()).Up(ctx); err != nil {
		pool.Close()
		cleanup()
		fmt.Fprintf(os.Stderr, "run migrations: %v\n", err)
		os.Exit(1)
	}

	globalDB = &testDB{Pool: pool}
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

// findMigrationsDir locates the migrations directory relative to this test file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	// test/integration -> repo root
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// uniqueEmail generates a unique account email for test isolation.
func uniqueEmail(prefix string) string {
	short := strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	return fmt.Sprintf("%s_%s@clinic.test", prefix, short)
}

func createTestDoctor(t *testing.T, ctx context.Context, email string) {
	t.Helper()
	repo := identity.NewRepo(globalDB.Pool)
	err := repo.Create(ctx, &identity.User{
		Name:         "Dr. Test",
		Email:        email,
		PasswordHash: "$2a$10$integrationfixturehashonly",
		Role:         identity.DefaultRole,
	})
	if err != nil {
		t.Fatalf("create doctor %s: %v", email, err)
	}
}

// seedAssessment inserts one assessment through the real repository, then
// pins created_at so ordering assertions are deterministic.
func seedAssessment(t *testing.T, ctx context.Context, doctor, patientName string, createdAt time.Time, score float64) uuid.UUID {
	t.Helper()
	rec := &assessment.Record{
		UserID:               doctor,
		DoctorID:             doctor,
		PatientID:            assessment.DerivePatientID(doctor, patientName),
		PatientName:          patientName,
		Input:                map[string]interface{}{"age": 57.0, "chol": 212.0},
		Lifestyle:            map[string]interface{}{},
		RiskScore:            score,
		RiskLevel:            ml.RiskLevel(score),
		TopFeatures:          []assessment.FeatureContribution{},
		LifestyleSuggestions: []string{},
	}
	repo := assessment.NewRepo(globalDB.Pool)
	if err := repo.Insert(ctx, rec); err != nil {
		t.Fatalf("insert assessment: %v", err)
	}
	if _, err := globalDB.Pool.Exec(ctx,
		`UPDATE assessments SET created_at = $2 WHERE id = $1`, rec.ID, createdAt,
	); err != nil {
		t.Fatalf("set created_at: %v", err)
	}
	return rec.ID
}
