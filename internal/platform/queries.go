package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rewired-gh/xpgraph/internal/models"
)

const userQuery = `
{
  user {
    id
    login
  }
}`

const xpTransactionsQuery = `
{
  transaction(where: {type: {_eq: "xp"}}, order_by: {createdAt: asc}) {
    amount
    createdAt
    object {
      name
    }
  }
}`

// FetchUser returns the signed-in user.
func (c *Client) FetchUser(ctx context.Context, token string) (*models.User, error) {
	var data struct {
		User json.RawMessage `json:"user"`
	}
	if err := c.Query(ctx, token, userQuery, nil, &data); err != nil {
		return nil, err
	}

	user, err := decodeUser(data.User)
	if err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}
	return user, nil
}

// decodeUser accepts the user as either an object or a one-element array;
// the platform returns the array form for row-level-secured tables.
func decodeUser(raw json.RawMessage) (*models.User, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrUserNotFound
	}

	if raw[0] == '[' {
		var users []models.User
		if err := json.Unmarshal(raw, &users); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		if len(users) == 0 {
			return nil, ErrUserNotFound
		}
		return &users[0], nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// FetchTransactions returns the user's XP transactions in the order the
// platform sent them. Records failing validation are rejected here so the
// aggregation core only sees well-formed input.
func (c *Client) FetchTransactions(ctx context.Context, token string) ([]models.Transaction, error) {
	var data struct {
		Transaction []models.Transaction `json:"transaction"`
	}
	if err := c.Query(ctx, token, xpTransactionsQuery, nil, &data); err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(data.Transaction))
	for i := range data.Transaction {
		if err := data.Transaction[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction %d: %w", i, err)
		}
		txs = append(txs, data.Transaction[i])
	}
	return txs, nil
}
