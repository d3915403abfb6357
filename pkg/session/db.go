package session

import (
	"database/sql"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kvesta/scanconsole/config"
)

const dbName = "session.db"

// DB is a Store backed by a sqlite file in the client home folder,
// so a login survives a restart.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the session database under dir.
func Open(dir string) (*DB, error) {
	if err := config.MkFolder(dir); err != nil {
		return nil, errors.Wrapf(err, "create folder %s", dir)
	}

	dbPath := filepath.Join(dir, dbName)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dbPath)
	}

	// The single id row enforces one credential per profile.
	credTable := `CREATE TABLE IF NOT EXISTS credential (
			"ID" INTEGER NOT NULL PRIMARY KEY CHECK ("ID" = 1),
			"Token" TEXT NOT NULL);`
	if _, err = db.Exec(credTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create credential table")
	}

	return &DB{db: db, path: dbPath}, nil
}

func (s *DB) Path() string {
	return s.path
}

func (s *DB) Credential() (string, bool) {
	var token string

	err := s.db.QueryRow(`SELECT "Token" FROM credential WHERE "ID" = 1`).Scan(&token)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to read credential")
		}
		return "", false
	}

	return token, token != ""
}

func (s *DB) SetCredential(token string) error {
	if token == "" {
		return ErrEmptyCredential
	}

	sqlRow := `INSERT INTO credential ("ID", "Token") VALUES (1, ?)
			ON CONFLICT("ID") DO UPDATE SET "Token" = excluded."Token"`
	if _, err := s.db.Exec(sqlRow, token); err != nil {
		return errors.Wrap(err, "store credential")
	}

	return nil
}

func (s *DB) ClearCredential() error {
	if _, err := s.db.Exec(`DELETE FROM credential`); err != nil {
		return errors.Wrap(err, "clear credential")
	}
	return nil
}

func (s *DB) Close() error {
	return s.db.Close()
}
