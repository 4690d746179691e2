package log

import (
	"context"
	"sync/atomic"
	"time"
)

type idKey struct{}

// ID tags every line logged for one connection attempt.
type ID struct {
	ID        uint32
	CreatedAt time.Time
}

var nextID atomic.Uint32

func ContextWithNewID(ctx context.Context) context.Context {
	return ContextWithID(ctx, ID{
		ID:        nextID.Add(1),
		CreatedAt: time.Now(),
	})
}

func ContextWithID(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, (*idKey)(nil), id)
}

func IDFromContext(ctx context.Context) (ID, bool) {
	id, loaded := ctx.Value((*idKey)(nil)).(ID)
	return id, loaded
}
