package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/hpungsan/mapjournal/internal/config"
)

// CurrentSchemaVersion is the latest schema version.
const CurrentSchemaVersion = 1

// DatabaseName is the fixed file name of the journal database inside the base directory.
const DatabaseName = "MapJournal.db"

// Open opens (creating if needed) the journal database at baseDir/MapJournal.db
// and applies the schema on first creation. The returned handle is writable.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.mapjournal.
func Open(baseDir string, log zerolog.Logger) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the connection string apply to every pooled connection
	dbPath := filepath.Join(baseDir, DatabaseName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// First real query: a corrupt or unreadable file fails here
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db, log); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	log.Debug().Str("path", dbPath).Msg("database opened")
	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate creates the schema on a fresh file and hands any other version to onUpgrade.
func migrate(db *sql.DB, log zerolog.Logger) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version == 0 {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin schema creation: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		for _, stmt := range schemaDDL {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("schema creation failed: %w", err)
			}
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", CurrentSchemaVersion)); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit schema: %w", err)
		}
		log.Info().Int("version", CurrentSchemaVersion).Msg("database schema created")
		return nil
	}

	if version != CurrentSchemaVersion {
		return onUpgrade(db, version, CurrentSchemaVersion, log)
	}
	return nil
}

// onUpgrade is called when the file's schema version differs from CurrentSchemaVersion.
// There is only one schema version, so no migration exists: the file is left as-is.
func onUpgrade(_ *sql.DB, from, to int, log zerolog.Logger) error {
	log.Warn().Int("from", from).Int("to", to).Msg("schema version mismatch; no migration defined, opening as-is")
	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
