package evidence

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Tee writes every record to a primary store and, in parallel, to an
// archiver. Reads come from the primary store only.
type Tee struct {
	primary  Store
	archiver Archiver
}

func NewTee(primary Store, archiver Archiver) *Tee {
	if primary == nil {
		primary = NewMemoryStore()
	}
	return &Tee{primary: primary, archiver: archiver}
}

func (t *Tee) Persist(ctx context.Context, rec Record) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.primary.Persist(gctx, rec) })
	if t.archiver != nil {
		g.Go(func() error { return t.archiver.Archive(gctx, rec) })
	}
	return g.Wait()
}

func (t *Tee) All(ctx context.Context) ([]Record, error) {
	return t.primary.All(ctx)
}
