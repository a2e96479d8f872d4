// Package database opens and bootstraps the PostgreSQL store used when a
// database engine is configured; without one the app runs on the in-memory
// store.
package database

import (
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core"
)

func Open(conf *core.Config) (*sqlx.DB, error) {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(conf.Database.Engine, u.String())
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS user_account (
	id                SERIAL PRIMARY KEY,
	name              TEXT NOT NULL,
	username          TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL UNIQUE,
	role              TEXT NOT NULL,
	is_active         BOOLEAN NOT NULL DEFAULT TRUE,
	enrolled_courses  JSONB NOT NULL DEFAULT '[]',
	completed_lessons JSONB NOT NULL DEFAULT '[]',
	quiz_scores       JSONB NOT NULL DEFAULT '[]',
	certificates      JSONB NOT NULL DEFAULT '[]',
	password_hash     BYTEA,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	last_login        TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS user_account_username_idx
	ON user_account (username) WHERE username <> '';
`

// Migrate brings the schema up to date.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
