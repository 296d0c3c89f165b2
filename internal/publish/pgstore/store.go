// Package pgstore keeps published card handles in Postgres so a restarted
// service edits its existing card instead of posting a new one.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pingcard/pingcard/internal/publish"
)

const (
	loadHandle = `SELECT message_id FROM card_handles WHERE subscription = $1`

	saveHandle = `INSERT INTO card_handles (subscription, message_id, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (subscription) DO UPDATE
SET message_id = EXCLUDED.message_id, updated_at = EXCLUDED.updated_at`

	deleteHandle = `DELETE FROM card_handles WHERE subscription = $1`
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DBTX
}

var _ publish.HandleStore = (*Store)(nil)

func New(db DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context, subscription string) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("card handle store is not configured")
	}
	var id string
	err := s.db.QueryRow(ctx, loadHandle, subscription).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", publish.ErrNoHandle
	}
	if err != nil {
		return "", fmt.Errorf("load card handle: %w", err)
	}
	return id, nil
}

func (s *Store) Save(ctx context.Context, subscription, messageID string) error {
	if s == nil || s.db == nil {
		return errors.New("card handle store is not configured")
	}
	if _, err := s.db.Exec(ctx, saveHandle, subscription, messageID); err != nil {
		return fmt.Errorf("save card handle: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, subscription string) error {
	if s == nil || s.db == nil {
		return errors.New("card handle store is not configured")
	}
	if _, err := s.db.Exec(ctx, deleteHandle, subscription); err != nil {
		return fmt.Errorf("delete card handle: %w", err)
	}
	return nil
}
