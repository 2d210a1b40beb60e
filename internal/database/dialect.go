package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

const defaultMaxOpenConns = 25

// Dialect hides the differences between the supported SQL drivers.
// Repositories write queries with ? placeholders and the dialect adapts them.
type Dialect interface {
	DriverName() string
	DSN(config DialectConfig) string

	// RewriteQuery adapts ? placeholders to the driver's syntax
	RewriteQuery(query string) string

	// SupportsLastInsertId is false for drivers that need INSERT ... RETURNING id
	SupportsLastInsertId() bool

	ConfigureConnection(db *sql.DB, config DialectConfig) error

	// MigrationsSubdir names the directory of the migrations FS holding this dialect's SQL
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string

	// CaseInsensitiveLike is the operator used by the admin prefix filters
	CaseInsensitiveLike() string
}

// DialectConfig holds connection settings. SQLite uses Path, the server
// databases use URL and MaxOpenConns.
type DialectConfig struct {
	Path         string
	URL          string
	MaxOpenConns int
}

// numberPlaceholders turns ? into $1, $2, ... leaving quoted literals alone,
// so an answer like 'why?' stored inline is not treated as a parameter
func numberPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// configurePool sizes the connection pool, falling back to defaultMaxOpenConns
func configurePool(db *sql.DB, config DialectConfig) {
	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(1, maxOpen/5))
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}
