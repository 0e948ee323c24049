package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{
			name: "valid transaction",
			tx: Transaction{
				Amount:    1200,
				CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
				Object:    Object{Name: "go-reloaded"},
			},
			wantErr: false,
		},
		{
			name: "negative amount is allowed",
			tx: Transaction{
				Amount:    -50,
				CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
				Object:    Object{Name: "ascii-art"},
			},
			wantErr: false,
		},
		{
			name: "missing createdAt",
			tx: Transaction{
				Amount: 10,
				Object: Object{Name: "ascii-art"},
			},
			wantErr: true,
		},
		{
			name: "blank object name",
			tx: Transaction{
				Amount:    10,
				CreatedAt: time.Now(),
				Object:    Object{Name: "  "},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Transaction.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionDecodePlatformJSON(t *testing.T) {
	raw := `{"amount": 9000, "createdAt": "2024-05-12T08:30:00.123456+00:00", "object": {"name": "lem-in"}}`

	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if tx.Amount != 9000 {
		t.Errorf("Expected amount 9000, got %d", tx.Amount)
	}
	if tx.Category() != "lem-in" {
		t.Errorf("Expected category 'lem-in', got '%s'", tx.Category())
	}
	want := time.Date(2024, 5, 12, 8, 30, 0, 123456000, time.UTC)
	if !tx.CreatedAt.Equal(want) {
		t.Errorf("Expected createdAt %v, got %v", want, tx.CreatedAt)
	}
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{name: "valid user", user: User{ID: 42, Login: "jdoe"}, wantErr: false},
		{name: "zero ID", user: User{Login: "jdoe"}, wantErr: true},
		{name: "empty login", user: User{ID: 42}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("User.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
