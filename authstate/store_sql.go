package authstate

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const sqlSchema = `
CREATE TABLE IF NOT EXISTS PendingAuthState (
	slot INTEGER PRIMARY KEY CHECK (slot = 1),
	state TEXT NOT NULL,
	issuedAt INTEGER NOT NULL,
	platform TEXT NOT NULL
);
`

// SQLStore keeps the single PendingState record in a one-row table, for
// deployments where the redirector already carries a database. The slot
// column is constrained to 1 so the single-slot invariant holds at the
// storage layer.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates the backing table if needed and returns the store.
func NewSQLStore(db *sqlx.DB) (*SQLStore, error) {
	if _, err := db.Exec(sqlSchema); err != nil {
		return nil, errors.Wrap(ErrStorage, err.Error())
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Save(state PendingState) error {
	_, err := s.db.Exec(
		`INSERT INTO PendingAuthState (slot, state, issuedAt, platform) VALUES (1, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET state=excluded.state, issuedAt=excluded.issuedAt, platform=excluded.platform`,
		state.State, state.IssuedAt.UnixMilli(), string(state.Platform),
	)
	if err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	return nil
}

func (s *SQLStore) Load() (*PendingState, error) {
	var row struct {
		State    string `db:"state"`
		IssuedAt int64  `db:"issuedAt"`
		Platform string `db:"platform"`
	}
	err := s.db.Get(&row, `SELECT state, issuedAt, platform FROM PendingAuthState WHERE slot = 1`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(ErrStorage, err.Error())
	}
	return &PendingState{
		State:    row.State,
		IssuedAt: time.UnixMilli(row.IssuedAt),
		Platform: Platform(row.Platform),
	}, nil
}

func (s *SQLStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM PendingAuthState WHERE slot = 1`); err != nil {
		return errors.Wrap(ErrStorage, err.Error())
	}
	return nil
}
