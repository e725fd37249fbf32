package reading

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS readings (
	character TEXT NOT NULL,
	rank      INTEGER NOT NULL,
	reading   TEXT NOT NULL,
	PRIMARY KEY (character, rank)
)`

// LoadSQLite reads a dictionary previously written by SaveSQLite.
func LoadSQLite(path string) (*Dictionary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening dictionary database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT character, reading FROM readings ORDER BY character, rank`)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	entries := make(map[rune][]string)
	for rows.Next() {
		var char, rd string
		if err := rows.Scan(&char, &rd); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		r, err := entryRune(char)
		if err != nil {
			return nil, err
		}
		if rd == "" {
			return nil, fmt.Errorf("invalid entry found: empty reading for %s", char)
		}
		entries[r] = append(entries[r], rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading readings: %w", err)
	}

	return &Dictionary{entries: entries}, nil
}

// SaveSQLite writes d to a SQLite database at path, replacing any readings
// table already there. Characters without readings are not stored.
func SaveSQLite(path string, d *Dictionary) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening dictionary database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS readings`); err != nil {
		return fmt.Errorf("dropping readings: %w", err)
	}
	if _, err := tx.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("creating readings: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO readings (character, rank, reading) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range d.Entries() {
		for rank, rd := range e.Readings {
			if _, err := stmt.Exec(e.Character, rank, rd); err != nil {
				return fmt.Errorf("inserting %s: %w", e.Character, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing readings: %w", err)
	}
	return nil
}
