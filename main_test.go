package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LepeyevaEmiliya/projects/models"
	"github.com/LepeyevaEmiliya/projects/repositories"
	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "taskflow.db") + "?_foreign_keys=on"
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("DB_DRIVER", repositories.DriverSQLite)
	t.Setenv("DB_DSN", dsn)
	t.Setenv("NOTIFICATIONS_BACKEND", "sql")
	t.Setenv("MONGO_URI", "")
	return dsn
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateAndUserCommands(t *testing.T) {
	dsn := setupEnv(t)

	out, err := run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Schema applied") {
		t.Errorf("unexpected migrate output %q", out)
	}

	ctx := context.Background()
	db, err := repositories.Open(ctx, repositories.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	auth := services.NewAuthService(repositories.NewUserRepository(db), utils.NewJWTManager("cli-secret", 0))
	if _, err := auth.Register(ctx, "carol@example.com", "password1", "carol"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = db.Close()

	if _, err := run(t, "users", "deactivate", "carol@example.com"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	db, err = repositories.Open(ctx, repositories.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	u, err := repositories.NewUserRepository(db).GetByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.IsActive {
		t.Error("expected carol to be deactivated")
	}

	_, err = run(t, "users", "activate", "nobody@example.com")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("activating unknown user: err = %v, want not found", err)
	}
}

func TestRemindDeadlinesOnEmptyDatabase(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "migrate"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	out, err := run(t, "remind-deadlines", "--within", "48h")
	if err != nil {
		t.Fatalf("remind-deadlines: %v", err)
	}
	if !strings.Contains(out, "Sent 0 deadline reminders") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRemindDeadlinesRejectsBadWindow(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "migrate"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := run(t, "remind-deadlines", "--within", "0s"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}
