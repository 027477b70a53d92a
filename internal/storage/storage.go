package storage

import (
	"net/url"
	"strings"

	"github.com/julianstephens/daylog/internal/storage/postgres"
	"github.com/julianstephens/daylog/internal/storage/sqlite"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// IsPostgresURL reports whether target names a PostgreSQL database rather than a
// SQLite file path.
func IsPostgresURL(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// NormalizeURL rewrites the legacy postgres:// scheme to postgresql://.
func NormalizeURL(target string) string {
	if strings.HasPrefix(target, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(target, "postgres://")
	}
	return target
}

// HasEmbeddedCredentials reports whether a PostgreSQL URL or DSN carries a password.
func HasEmbeddedCredentials(target string) bool {
	if IsPostgresURL(target) {
		u, err := url.Parse(target)
		if err != nil {
			return false
		}
		_, ok := u.User.Password()
		return ok
	}
	for _, pair := range strings.Fields(target) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
			return true
		}
	}
	return false
}

// Open picks a provider for target. PostgreSQL URLs get the postgres store,
// anything else is treated as a SQLite file path.
func Open(target string) Provider {
	if IsPostgresURL(target) {
		return postgres.New(NormalizeURL(target))
	}
	return sqlite.NewStore(target)
}
