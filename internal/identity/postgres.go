package identity

import (
	"context"
	"errors"

	"cc-live/internal/store"
)

type Postgres struct {
	st  *store.Store
	key string
}

func NewPostgres(st *store.Store, key string) *Postgres {
	if key == "" {
		key = "default"
	}
	return &Postgres{st: st, key: key}
}

func (p *Postgres) Get(ctx context.Context) (string, error) {
	v, err := p.st.GetViewerIdentity(ctx, p.key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.ViewerID, nil
}

func (p *Postgres) Set(ctx context.Context, viewerID string) error {
	id, err := normalize(viewerID)
	if err != nil {
		return err
	}
	return p.st.UpsertViewerIdentity(ctx, p.key, id)
}
