package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mingle/app/config"
	"mingle/app/models"
	"mingle/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		io.Copy(&buf, r)
		close(done)
	}()

	f()

	w.Close()
	os.Stdout = oldStdout
	<-done
	return buf.String()
}

func mockStdin(input string, f func()) {
	oldStdin := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r

	// Write input in a goroutine to avoid blocking
	go func() {
		w.Write([]byte(input))
		w.Close()
	}()

	f()

	os.Stdin = oldStdin
	r.Close()
}

// setupTestDB points the Badger store and backups at a temporary directory.
func setupTestDB(t *testing.T) *config.Config {
	tmpDir := t.TempDir()
	t.Setenv("STORE_DRIVER", "badger")
	t.Setenv("BADGER_PATH", filepath.Join(tmpDir, "badger"))
	t.Setenv("BACKUP_DIR", filepath.Join(tmpDir, "backups"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func seedUser(t *testing.T, cfg *config.Config) {
	repo, err := repositories.NewRepository(cfg.BadgerPath)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.Users.Create(context.Background(), &models.User{
		ID:           "u-olga",
		Username:     "Olga",
		Email:        "olga@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func TestHandleCommand(t *testing.T) {
	setupTestDB(t)

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: mingle db <command>",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: mingle db <command>",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown db command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "migrate without database url",
			args:           []string{"migrate"},
			expectedOutput: "Error: DATABASE_URL is required for migrate",
			expectedExit:   1,
		},
		{
			name:           "init",
			args:           []string{"init"},
			expectedOutput: "Database initialized successfully",
			expectedExit:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode := 0
			oldOsExit := osExit
			defer func() { osExit = oldOsExit }()
			osExit = func(code int) {
				exitCode = code
				panic("exit")
			}

			output := captureOutput(func() {
				defer func() {
					if r := recover(); r != nil {
						if r != "exit" {
							panic(r)
						}
					}
				}()
				HandleCommand(tt.args)
			})

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestHandleCommandInvalidConfig(t *testing.T) {
	setupTestDB(t)
	t.Setenv("STORE_DRIVER", "mongo")

	oldOsExit := osExit
	defer func() { osExit = oldOsExit }()
	var exitCode int
	osExit = func(code int) { exitCode = code }

	output := captureOutput(func() {
		HandleCommand([]string{"init"})
	})
	assert.Contains(t, output, "invalid STORE_DRIVER")
	assert.Equal(t, 1, exitCode)
}

func TestInitDb(t *testing.T) {
	cfg := setupTestDB(t)

	t.Run("initialize new database", func(t *testing.T) {
		output := captureOutput(func() {
			assert.Equal(t, 0, initDb(cfg))
		})

		assert.Contains(t, output, "Database initialized successfully")
		assert.DirExists(t, cfg.BadgerPath)
	})

	t.Run("initialize existing database", func(t *testing.T) {
		output := captureOutput(func() {
			initDb(cfg)
		})

		assert.Contains(t, output, "Database already exists")
	})
}

func TestClean(t *testing.T) {
	cfg := setupTestDB(t)

	t.Run("clean non-existent database", func(t *testing.T) {
		output := captureOutput(func() {
			clean(cfg)
		})

		assert.Contains(t, output, "Database is already clean")
	})

	t.Run("clean existing database - cancelled", func(t *testing.T) {
		captureOutput(func() { initDb(cfg) })
		require.DirExists(t, cfg.BadgerPath)

		var output string
		mockStdin("n\n", func() {
			output = captureOutput(func() {
				clean(cfg)
			})
		})

		assert.Contains(t, output, "Operation cancelled")
		assert.DirExists(t, cfg.BadgerPath)
	})

	t.Run("clean existing database - confirmed", func(t *testing.T) {
		var output string
		mockStdin("y\n", func() {
			output = captureOutput(func() {
				clean(cfg)
			})
		})

		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoDirExists(t, cfg.BadgerPath)
	})
}

func TestBackup(t *testing.T) {
	cfg := setupTestDB(t)

	t.Run("backup non-existent database", func(t *testing.T) {
		output := captureOutput(func() {
			assert.Equal(t, 1, backup(cfg))
		})

		assert.Contains(t, output, "No database exists to backup")
	})

	t.Run("backup existing database", func(t *testing.T) {
		seedUser(t, cfg)

		output := captureOutput(func() {
			assert.Equal(t, 0, backup(cfg))
		})

		assert.Contains(t, output, "Database backed up successfully")
		entries, err := os.ReadDir(cfg.BackupDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("backup refuses postgres", func(t *testing.T) {
		pgCfg := *cfg
		pgCfg.StoreDriver = config.DriverPostgres
		output := captureOutput(func() {
			assert.Equal(t, 1, backup(&pgCfg))
		})
		assert.Contains(t, output, "only supported for the badger store")
	})
}

func TestRestore(t *testing.T) {
	cfg := setupTestDB(t)

	seedUser(t, cfg)
	captureOutput(func() { backup(cfg) })
	entries, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	backupFile := filepath.Join(cfg.BackupDir, entries[0].Name())

	t.Run("restore non-existent backup", func(t *testing.T) {
		output := captureOutput(func() {
			assert.Equal(t, 1, restore(cfg, "nonexistent.db"))
		})

		assert.Contains(t, output, "Backup file does not exist")
	})

	t.Run("restore empty backup", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.db")
		require.NoError(t, os.WriteFile(empty, nil, 0644))
		output := captureOutput(func() {
			assert.Equal(t, 1, restore(cfg, empty))
		})

		assert.Contains(t, output, "Backup file is empty")
	})

	t.Run("restore with existing database - cancelled", func(t *testing.T) {
		var output string
		mockStdin("n\n", func() {
			output = captureOutput(func() {
				restore(cfg, backupFile)
			})
		})

		assert.Contains(t, output, "Operation cancelled")
		assert.DirExists(t, cfg.BadgerPath)
	})

	t.Run("restore with existing database - confirmed", func(t *testing.T) {
		var output string
		mockStdin("y\n", func() {
			output = captureOutput(func() {
				restore(cfg, backupFile)
			})
		})
		require.Contains(t, output, "Database restored successfully")

		repo, err := repositories.NewRepository(cfg.BadgerPath)
		require.NoError(t, err)
		defer repo.Close()
		user, err := repo.Users.GetByEmail(context.Background(), "olga@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u-olga", user.ID)
	})

	t.Run("restore to clean state", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(cfg.BadgerPath))
		output := captureOutput(func() {
			assert.Equal(t, 0, restore(cfg, backupFile))
		})

		assert.True(t, strings.Contains(output, "Database restored successfully"), output)
	})
}
