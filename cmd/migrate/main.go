package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/backoffice/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

// dsnEnv — переменные, из которых берётся DSN, по приоритету.
var dsnEnv = []string{"ORDER_STORE_POSTGRES_DSN", "BACKOFFICE_POSTGRES_DSN"}

func main() {
	var (
		direction string
		steps     int
		dsn       string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status|list")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: "+strings.Join(dsnEnv, ", ")+")")
	flag.Parse()

	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction == "list" {
		if err := listMigrations(os.Stdout); err != nil {
			fail("list migrations: %v", err)
		}
		return
	}

	dsn = resolveDSN(dsn, os.Getenv)
	if dsn == "" {
		fail("%s (or -dsn) is required", dsnEnv[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := migrate(ctx, store, direction, steps, os.Stdout); err != nil {
		fail("%v", err)
	}
}

func resolveDSN(flagValue string, getenv func(string) string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	for _, key := range dsnEnv {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func migrate(ctx context.Context, store *postgres.Store, direction string, steps int, out io.Writer) error {
	switch direction {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
	case "down":
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
	case "status":
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status|list)", direction)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, _ = fmt.Fprintf(out, "migrate %s ok: version=%d applied=%d\n", direction, version, count)
	return nil
}

// listMigrations печатает встроенные миграции без подключения к БД.
func listMigrations(out io.Writer) error {
	migrations, err := postgres.Migrations()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		_, _ = fmt.Fprintf(out, "%04d_%s\n", m.Version, m.Name)
	}
	return nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
