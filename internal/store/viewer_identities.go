package store

import (
	"context"
	"errors"
	"time"
)

type ViewerIdentity struct {
	Key       string
	ViewerID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Store) GetViewerIdentity(ctx context.Context, key string) (*ViewerIdentity, error) {
	row := s.Pool.QueryRow(ctx, `SELECT identity_key, viewer_id, created_at, updated_at FROM viewer_identities WHERE identity_key = $1`, key)
	var v ViewerIdentity
	if err := row.Scan(&v.Key, &v.ViewerID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &v, nil
}

func (s *Store) UpsertViewerIdentity(ctx context.Context, key, viewerID string) error {
	if viewerID == "" {
		return errors.New("viewer id must not be empty")
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO viewer_identities (identity_key, viewer_id)
VALUES ($1, $2)
ON CONFLICT (identity_key) DO UPDATE SET viewer_id = EXCLUDED.viewer_id, updated_at = now()`, key, viewerID)
	return err
}

func (s *Store) DeleteViewerIdentity(ctx context.Context, key string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM viewer_identities WHERE identity_key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
