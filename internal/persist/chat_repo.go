package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatRow is one archived chat message.
type ChatRow struct {
	ID       uuid.UUID
	PlayerID uint64
	Message  string
	SentAt   time.Time
}

type ChatRepo struct {
	db *DB
}

func NewChatRepo(db *DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// InsertBatch writes rows in a single transaction. Rows already archived
// (same ID) are skipped.
func (r *ChatRepo) InsertBatch(ctx context.Context, rows []ChatRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("chat begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (id, player_id, message, sent_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			row.ID, int64(row.PlayerID), row.Message, row.SentAt,
		); err != nil {
			return fmt.Errorf("chat insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// LoadRecent returns up to limit of the newest messages, oldest first.
// A limit of 0 loads the whole archive.
func (r *ChatRepo) LoadRecent(ctx context.Context, limit int) ([]ChatRow, error) {
	query := `SELECT id, player_id, message, sent_at FROM (
		SELECT id, player_id, message, sent_at FROM chat_messages
		ORDER BY sent_at DESC, created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	query += `) recent ORDER BY sent_at, id`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("chat load: %w", err)
	}
	defer rows.Close()

	var out []ChatRow
	for rows.Next() {
		var c ChatRow
		var playerID int64
		if err := rows.Scan(&c.ID, &playerID, &c.Message, &c.SentAt); err != nil {
			return nil, fmt.Errorf("chat scan: %w", err)
		}
		c.PlayerID = uint64(playerID)
		out = append(out, c)
	}
	return out, rows.Err()
}
