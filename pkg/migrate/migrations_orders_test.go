package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kaoruharada/marketcore-backend/pkg/migrate"
)

func TestOrderReplicasMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_replicas.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no order_replicas migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS order_replicas",
		"PRIMARY KEY (id, owner_scope)",
		"CHECK (owner_scope IN ('customer', 'provider'))",
		"CHECK (amount_cents >= 0)",
		"DROP TABLE IF EXISTS order_replicas",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
