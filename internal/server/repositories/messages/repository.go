// Package messages is the append-only message store.
package messages

import (
	"context"

	"github.com/dmitrijs2005/securechat/internal/server/models"
)

type Repository interface {
	// Append assigns the next id and returns the stored message. Ids are
	// unique across the store and increase in append order.
	Append(ctx context.Context, msg *models.Message) (*models.Message, error)

	// ListForRecipient returns every message addressed to recipient in
	// ascending id order, or an empty slice.
	ListForRecipient(ctx context.Context, recipient string) ([]models.Message, error)

	// GetByID returns common.ErrorNotFound for unknown ids.
	GetByID(ctx context.Context, id int64) (*models.Message, error)
}
