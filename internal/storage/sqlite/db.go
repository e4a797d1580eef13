package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// The journal records every accepted upload for the running session:
// duplicate detection backstop and audit trail. With the default
// ":memory:" DSN nothing outlives the process.

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS loaded_files (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		slot        TEXT NOT NULL,
		name        TEXT NOT NULL,
		raw_content TEXT NOT NULL,
		range_start DATETIME,
		range_end   DATETIME,
		loaded_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(slot, name)
	);
	CREATE INDEX IF NOT EXISTS idx_loaded_files_slot ON loaded_files(slot);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

type LoadedFile struct {
	ID         int64
	Slot       string
	Name       string
	RawContent string
	RangeStart time.Time
	RangeEnd   time.Time
	LoadedAt   time.Time
}

func InsertLoadedFile(db *sql.DB, file LoadedFile) error {
	var start, end any
	if !file.RangeStart.IsZero() {
		start = file.RangeStart
	}
	if !file.RangeEnd.IsZero() {
		end = file.RangeEnd
	}
	_, err := db.Exec(
		`INSERT INTO loaded_files (slot, name, raw_content, range_start, range_end)
		 VALUES (?, ?, ?, ?, ?)`,
		file.Slot, file.Name, file.RawContent, start, end,
	)
	return err
}

func FileExists(db *sql.DB, slot, name string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM loaded_files WHERE slot = ? AND name = ?`, slot, name).Scan(&count)
	return count > 0, err
}

func CountFiles(db *sql.DB, slot string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM loaded_files WHERE slot = ?`, slot).Scan(&count)
	return count, err
}

func ListRawContents(db *sql.DB, slot string) ([]string, error) {
	rows, err := db.Query(`SELECT raw_content FROM loaded_files WHERE slot = ? ORDER BY loaded_at, id`, slot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func ClearFiles(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM loaded_files`)
	return err
}
