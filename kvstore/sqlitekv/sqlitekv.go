// SPDX-License-Identifier: GPL-3.0-or-later
package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CrawX/go-hammie/domain"
	"github.com/CrawX/go-hammie/log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id:   "1_kv",
			Up:   []string{`CREATE TABLE kv (key TEXT NOT NULL PRIMARY KEY, value BLOB NOT NULL)`},
			Down: []string{`DROP TABLE kv`},
		},
	},
}

// Store is a KeyValueStore kept in a single sqlite table.
type Store struct {
	db *sqlx.DB
	l  *logrus.Logger
}

func Open(datasource string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := log.Logger(log.LOG_STORE)
	l.WithField("file", datasource).Debug("Connected")

	_, err = db.Exec(`PRAGMA journal_mode=WAL`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not set journal mode: %w", err)
	}
	_, err = db.Exec(`PRAGMA synchronous=normal`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not set synchronous mode: %w", err)
	}

	appliedMigrations, err := migrate.Exec(db.DB, "sqlite3", migrations, migrate.Up)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return &Store{
		db: db,
		l:  l,
	}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	s.l.Debug("Disconnected")
	return nil
}

func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return value, nil
}

func (s *Store) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)",
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("could not save key %q: %w", key, err)
	}

	return nil
}

// SetBatch writes all entries in one transaction.
func (s *Store) SetBatch(entries map[string][]byte) error {
	tx, err := s.db.BeginTxx(context.TODO(), nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)")
	if err != nil {
		return txEnd(tx, fmt.Errorf("could not prepare statement: %w", err))
	}
	defer stmt.Close()

	for key, value := range entries {
		_, err := stmt.Exec(key, value)
		if err != nil {
			return txEnd(tx, fmt.Errorf("could not save key %q: %w", key, err))
		}
	}

	return txEnd(tx, nil)
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("could not delete key %q: %w", key, err)
	}

	return nil
}

// Sync checkpoints the write-ahead log into the database file.
func (s *Store) Sync() error {
	_, err := s.db.Exec(`PRAGMA wal_checkpoint(FULL)`)
	if err != nil {
		return fmt.Errorf("could not checkpoint db: %w", err)
	}

	return nil
}

func (s *Store) Iterate(skip map[string]bool, fn func(key string, value []byte) error) error {
	rows, err := s.db.Queryx(`SELECT key, value FROM kv ORDER BY key`)
	if err != nil {
		return fmt.Errorf("could not query db: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("could not scan row: %w", err)
		}
		if skip[key] {
			continue
		}

		if err := fn(key, value); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("could not iterate rows: %w", err)
	}

	return nil
}

func (s *Store) Keys() ([]string, error) {
	keys := []string{}
	err := s.db.Select(&keys, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return keys, nil
}

func txEnd(tx *sqlx.Tx, err error) error {
	if err == nil {
		err = tx.Commit()
		if err != nil {
			return fmt.Errorf("could not commit tx: %w", err)
		}
	} else {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			errStr := err.Error()
			return fmt.Errorf("%s, could not rollback tx: %w", errStr, rollbackErr)
		} else {
			return err
		}
	}

	return nil
}
