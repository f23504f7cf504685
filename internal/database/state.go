package database

import (
	"database/sql"
	"fmt"
	"log"
	_ "modernc.org/sqlite"
)

// SaveSourceState upserts a reader cursor.
func SaveSourceState(source string, offset int64, hash string) error {
	query := `
	INSERT OR REPLACE INTO source_state (source, update_offset, content_hash)
	VALUES (?, ?, ?);`

	_, err := DB.Exec(query, source, offset, hash)
	if err != nil {
		return fmt.Errorf("failed to save state for source %s: %w", source, err)
	}
	return nil
}

// GetSourceState loads a reader cursor; absent state means a fresh start.
func GetSourceState(source string) (int64, string, error) {
	var offset int64
	var hash string

	query := `SELECT update_offset, content_hash FROM source_state WHERE source = ?;`
	err := DB.QueryRow(query, source).Scan(&offset, &hash)
	if err == sql.ErrNoRows {
		log.Printf("No saved state for source %s, starting fresh", source)
		return 0, "", nil
	} else if err != nil {
		return 0, "", fmt.Errorf("failed to get state for source %s: %w", source, err)
	}
	return offset, hash, nil
}

// Store adapts the package-level database to the reader state interface.
type Store struct{}

func NewStore() Store {
	return Store{}
}

func (Store) LoadCursor(source string) (int64, string, error) {
	return GetSourceState(source)
}

func (Store) SaveCursor(source string, offset int64, hash string) error {
	return SaveSourceState(source, offset, hash)
}
