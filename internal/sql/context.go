package sql

import (
	"context"
)

const (
	// context key for retrieving connection from context
	connCtxKey ctxKey = 1
)

type ctxKey int

func newContext(ctx context.Context, conn Connection) context.Context {
	return context.WithValue(ctx, connCtxKey, conn)
}

func fromContext(ctx context.Context) (Connection, bool) {
	conn, ok := ctx.Value(connCtxKey).(Connection)
	return conn, ok
}
