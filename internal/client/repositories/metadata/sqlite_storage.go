package metadata

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskflow/internal/client/session"
	"github.com/dmitrijs2005/taskflow/internal/dbx"
)

// SQLiteStorage persists the session pair in the metadata table. Both keys
// are read, written and erased in a single transaction.
type SQLiteStorage struct {
	db *sql.DB
}

var _ session.Storage = (*SQLiteStorage)(nil)

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

func (s *SQLiteStorage) Load(ctx context.Context) (session.Persisted, bool, error) {
	var (
		p     session.Persisted
		found bool
	)
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		vals, err := NewSQLiteRepository(tx).GetMany(ctx, session.KeyToken, session.KeyUserID)
		if err != nil {
			return err
		}
		tok, ok := vals[session.KeyToken]
		if !ok {
			return nil
		}
		p = session.Persisted{Token: tok, UserID: vals[session.KeyUserID]}
		found = true
		return nil
	})
	if err != nil {
		return session.Persisted{}, false, err
	}
	return p, found, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, p session.Persisted) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).SetMany(ctx, map[string]string{
			session.KeyToken:  p.Token,
			session.KeyUserID: p.UserID,
		})
	})
}

func (s *SQLiteStorage) Erase(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).DeleteMany(ctx, session.KeyToken, session.KeyUserID)
	})
}
