package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the Postgres pool. Migrations are applied separately by Migrate.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            full_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            phone_number TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'seeker' CHECK (role IN ('seeker', 'host')),
            gender TEXT NOT NULL DEFAULT 'prefer_not_to_say' CHECK (gender IN ('male', 'female', 'prefer_not_to_say')),
            is_verified BOOLEAN NOT NULL DEFAULT FALSE,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS preferences (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL UNIQUE REFERENCES users(id),
            budget_min BIGINT CHECK (budget_min >= 0),
            budget_max BIGINT CHECK (budget_max >= 0),
            city TEXT NOT NULL DEFAULT '',
            cleanliness_level TEXT NOT NULL DEFAULT '',
            noise_tolerance TEXT NOT NULL DEFAULT '',
            sleep_schedule TEXT NOT NULL DEFAULT '',
            smoking BOOLEAN,
            pets BOOLEAN,
            guests_allowed BOOLEAN,
            preferred_gender TEXT NOT NULL DEFAULT '',
            other_interests TEXT[],
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (budget_min IS NULL OR budget_max IS NULL OR budget_min <= budget_max)
        );`,
	`CREATE TABLE IF NOT EXISTS listings (
            id BIGSERIAL PRIMARY KEY,
            owner_id BIGINT NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            room_type TEXT NOT NULL CHECK (room_type IN ('apartment', 'bedsitter', 'hostel', 'shared', 'private')),
            city TEXT NOT NULL,
            area TEXT NOT NULL DEFAULT '',
            rent_amount NUMERIC(12,2) NOT NULL CHECK (rent_amount > 0),
            deposit_amount NUMERIC(12,2) CHECK (deposit_amount >= 0),
            available_from DATE,
            images TEXT[] NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	`CREATE INDEX IF NOT EXISTS listings_owner_idx ON listings (owner_id);`,
	`CREATE TABLE IF NOT EXISTS conversations (
            id BIGSERIAL PRIMARY KEY,
            user_low BIGINT NOT NULL REFERENCES users(id),
            user_high BIGINT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_message_at TIMESTAMPTZ,
            CHECK (user_low < user_high),
            UNIQUE (user_low, user_high)
        );`,
	`CREATE INDEX IF NOT EXISTS conversations_user_high_idx ON conversations (user_high);`,
	`CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            conversation_id BIGINT NOT NULL REFERENCES conversations(id),
            sender_id BIGINT NOT NULL REFERENCES users(id),
            message_text TEXT NOT NULL CHECK (length(btrim(message_text)) > 0),
            sent_at TIMESTAMPTZ NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            read_at TIMESTAMPTZ
        );`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_order_idx ON messages (conversation_id, sent_at, id);`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	log.Println("database migrations applied")
	return nil
}
