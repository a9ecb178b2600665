package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xR0am/contribpulse/pkg/logger"
)

var DB *sql.DB

// Init opens the SQLite database at the given path (creating it if
// needed), tunes it for concurrent access and runs the SQL scripts
// from the migrations directory.
func Init(path string) error {
	var err error

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_foreign_keys=ON&_busy_timeout=30000", path)
	DB, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}

	// Configure connection pool
	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(time.Hour)

	if err = DB.Ping(); err != nil {
		return err
	}

	if err = optimizeDatabase(DB); err != nil {
		return err
	}

	logger.WithField("path", path).Info("Database connected with WAL mode")

	if err = RunSQLScripts(DB, "migrations"); err != nil {
		return err
	}

	return nil
}

// optimizeDatabase configures SQLite for optimal performance
func optimizeDatabase(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=30000",
		"PRAGMA mmap_size=268435456", // 256MB
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// RunSQLScripts reads and executes SQL scripts from the directory
func RunSQLScripts(db *sql.DB, sqlDir string) error {
	files, err := os.ReadDir(sqlDir)
	if err != nil {
		return err
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".sql" {
			continue
		}

		sqlPath := filepath.Join(sqlDir, file.Name())
		sqlContent, err := os.ReadFile(sqlPath)
		if err != nil {
			return err
		}

		if _, err = db.Exec(string(sqlContent)); err != nil {
			return fmt.Errorf("execute %s: %w", file.Name(), err)
		}

		logger.WithField("script", file.Name()).Debug("Executed SQL script")
	}

	return nil
}
