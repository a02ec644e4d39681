package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mingle/app/config"
	"mingle/app/repositories"
	"mingle/app/repositories/postgres"
)

var osExit = os.Exit

// HandleCommand handles db subcommands and returns an exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printDbHelp()
		osExit(1)
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "help":
		printDbHelp()
		return 0
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			osExit(1)
			return 1
		}
	case "init", "clean", "backup", "migrate":
	default:
		fmt.Printf("Unknown db command: %s\n\n", cmd)
		printDbHelp()
		osExit(1)
		return 1
	}

	cfg, ok := loadConfig()
	if !ok {
		osExit(1)
		return 1
	}

	var code int
	switch cmd {
	case "init":
		code = initDb(cfg)
	case "clean":
		code = clean(cfg)
	case "backup":
		code = backup(cfg)
	case "restore":
		code = restore(cfg, args[1])
	case "migrate":
		code = migrate(cfg)
	}
	if code != 0 {
		osExit(code)
	}
	return code
}

// printDbHelp prints help for db subcommands.
func printDbHelp() {
	helpText := `Usage: mingle db <command>

Commands:
  init                            Initialize a new empty database
  clean                           Remove every post and user
  backup                          Create a backup of the Badger database in BACKUP_DIR
  restore <file>                  Restore the Badger database from a backup
  migrate                         Apply SQL migrations to DATABASE_URL
  help                            Display this help message
`
	fmt.Println(helpText)
}

// initDb creates an empty database for the configured store.
func initDb(cfg *config.Config) int {
	if cfg.StoreDriver == config.DriverPostgres {
		return migrate(cfg)
	}

	if pathExists(cfg.BadgerPath) {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}
	if err := os.MkdirAll(cfg.BadgerPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	repo, err := repositories.NewRepository(cfg.BadgerPath)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer repo.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// clean removes all data after confirmation.
func clean(cfg *config.Config) int {
	if cfg.StoreDriver == config.DriverPostgres {
		if !confirm("Are you sure you want to delete every post and user? This cannot be undone.") {
			fmt.Println("Operation cancelled")
			return 0
		}
		ctx := context.Background()
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Failed to open database: %v\n", err)
			return 1
		}
		defer db.Close()
		if err := postgres.Reset(ctx, db); err != nil {
			fmt.Printf("Failed to clean database: %v\n", err)
			return 1
		}
		fmt.Println("Database cleaned successfully")
		return 0
	}

	if !pathExists(cfg.BadgerPath) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}
	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 0
	}
	if err := os.RemoveAll(cfg.BadgerPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// backup writes a snapshot of the Badger database into cfg.BackupDir.
func backup(cfg *config.Config) int {
	if cfg.StoreDriver != config.DriverBadger {
		fmt.Println("Backup is only supported for the badger store. Use pg_dump for postgres.")
		return 1
	}
	if !pathExists(cfg.BadgerPath) {
		fmt.Println("No database exists to backup")
		return 1
	}
	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	repo, err := repositories.NewRepository(cfg.BadgerPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	backupFile := filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := repo.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the Badger database with the contents of backupFile.
func restore(cfg *config.Config, backupFile string) int {
	if cfg.StoreDriver != config.DriverBadger {
		fmt.Println("Restore is only supported for the badger store. Use pg_restore for postgres.")
		return 1
	}

	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if pathExists(cfg.BadgerPath) {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.BadgerPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}
	if err := os.MkdirAll(cfg.BadgerPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	repo, err := repositories.NewRepository(cfg.BadgerPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := repo.Load(f); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// migrate applies pending SQL migrations to cfg.DatabaseURL.
func migrate(cfg *config.Config) int {
	if cfg.DatabaseURL == "" {
		fmt.Println("Error: DATABASE_URL is required for migrate")
		return 1
	}

	db, err := postgres.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		return 1
	}
	fmt.Println("Database migrated successfully")
	return 0
}
