// Package models defines the domain entities read from the learning platform.
// These models represent the signed-in user and the XP transactions that feed
// the charts. Models include validation so malformed records can be rejected
// before they reach the aggregation core.
//
// Terminology (matching the platform's GraphQL schema):
//   - Transaction: one scored event with a signed amount and a timestamp.
//   - Object: the thing the transaction was earned on, usually a project.
package models

import (
	"errors"
	"strings"
	"time"
)

// Object is the named category a transaction is tied to.
type Object struct {
	Name string `json:"name"`
}

// Transaction represents one XP event as returned by the platform.
// A Transaction is immutable once fetched.
type Transaction struct {
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	Object    Object    `json:"object"`
}

// Category returns the name the transaction is grouped under.
func (t Transaction) Category() string {
	return t.Object.Name
}

// Validate checks that the fields the charts depend on are present.
func (t *Transaction) Validate() error {
	if t.CreatedAt.IsZero() {
		return errors.New("transaction createdAt must be set")
	}
	if strings.TrimSpace(t.Object.Name) == "" {
		return errors.New("transaction object name must not be empty")
	}
	return nil
}
