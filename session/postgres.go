package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursechat/coursechat/core"
)

// PostgresStore persists turn history in Postgres so sessions survive process
// restarts. Appends on the same session serialize on the database; the window
// is applied at read time, so older turns remain queryable for analytics.
type PostgresStore struct {
	pool   *pgxpool.Pool
	window int
}

// NewPostgresStore connects to the database at connString and ensures the
// turns table exists.
func NewPostgresStore(ctx context.Context, connString string, window int) (*PostgresStore, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	store := &PostgresStore{pool: pool, window: window}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreFromPool wraps an existing pool without running migrations.
func NewPostgresStoreFromPool(pool *pgxpool.Pool, window int) *PostgresStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &PostgresStore{pool: pool, window: window}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS chat_turns (
			id            BIGSERIAL PRIMARY KEY,
			session_id    TEXT        NOT NULL,
			user_msg      TEXT        NOT NULL,
			assistant_msg TEXT        NOT NULL,
			sources       JSONB       NOT NULL DEFAULT '[]',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_chat_turns_session ON chat_turns (session_id, id);
	`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate chat_turns: %w", err)
	}
	return nil
}

// Create allocates a new unique session id. Rows materialize on first append.
func (s *PostgresStore) Create() string { return uuid.NewString() }

// History returns the most recent turns within the window, oldest first.
func (s *PostgresStore) History(ctx context.Context, sessionID string) ([]core.Turn, error) {
	const q = `
		SELECT user_msg, assistant_msg, sources, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, q, sessionID, s.window)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var (
			turn    core.Turn
			sources []byte
		)
		if err := rows.Scan(&turn.UserMessage, &turn.AssistantMessage, &sources, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &turn.Sources); err != nil {
				return nil, fmt.Errorf("decode sources: %w", err)
			}
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	// Rows arrive newest first; reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Append records a completed turn in a single insert.
func (s *PostgresStore) Append(ctx context.Context, sessionID string, turn core.Turn) error {
	sources, err := json.Marshal(turn.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}

	const q = `
		INSERT INTO chat_turns (session_id, user_msg, assistant_msg, sources, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, q, sessionID, turn.UserMessage, turn.AssistantMessage, sources, turn.CreatedAt); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }
