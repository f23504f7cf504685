package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var DB *sql.DB

func InitDB(dbPath string) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var err error
	DB, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	createStateTable := `
	CREATE TABLE IF NOT EXISTS source_state (
		source TEXT PRIMARY KEY,
		update_offset INTEGER NOT NULL DEFAULT 0,
		content_hash TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	_, err = DB.Exec(createStateTable)
	if err != nil {
		return fmt.Errorf("failed to create source_state table: %w", err)
	}

	createTotalsTable := `
	CREATE TABLE IF NOT EXISTS totals (
		counter_name TEXT NOT NULL,
		label_one TEXT NOT NULL DEFAULT '',
		label_two TEXT NOT NULL DEFAULT '',
		total REAL NOT NULL,
		PRIMARY KEY (counter_name, label_one, label_two)
	);`
	_, err = DB.Exec(createTotalsTable)
	if err != nil {
		return fmt.Errorf("failed to create totals table: %w", err)
	}

	log.Println("Database initialized successfully.")
	return nil
}

func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
