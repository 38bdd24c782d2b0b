package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/dbx"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query :=
		`INSERT INTO messages (sender_username, recipient_username, encrypted_content, attachment_key, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.SenderUsername, msg.RecipientUsername, msg.EncryptedContent, msg.AttachmentKey, msg.Timestamp).Scan(&msg.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) ListForRecipient(ctx context.Context, recipient string) ([]models.Message, error) {
	query :=
		`SELECT id, sender_username, recipient_username, encrypted_content, attachment_key, created_at
		 FROM messages
		 WHERE recipient_username = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, recipient)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderUsername, &m.RecipientUsername, &m.EncryptedContent, &m.AttachmentKey, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query :=
		`SELECT id, sender_username, recipient_username, encrypted_content, attachment_key, created_at
		 FROM messages
		 WHERE id = $1
		 `

	m := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.SenderUsername, &m.RecipientUsername, &m.EncryptedContent, &m.AttachmentKey, &m.Timestamp)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}
