package ledger

import (
	"context"
	"strings"
)

// IsPostgresDSN reports whether source is a PostgreSQL connection URL.
func IsPostgresDSN(source string) bool {
	return strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://")
}

// Open returns a read-only store for source: a PostgresStore for a
// PostgreSQL URL, otherwise a BoltStore for the file at that path.
func Open(ctx context.Context, source string) (Store, error) {
	if IsPostgresDSN(source) {
		return OpenPostgres(ctx, source)
	}
	return OpenBolt(source, true)
}
