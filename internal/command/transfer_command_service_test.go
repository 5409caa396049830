package command

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

func validCommand() cqrs.ExecuteTransferCommand {
	return cqrs.ExecuteTransferCommand{
		OrgID:            "org-1",
		SenderWalletID:   "wallet-a",
		ReceiverWalletID: "wallet-b",
		Amount:           decimal.RequireFromString("100.50"),
		Type:             models.TransactionTypeInternalTransfer,
	}
}

func TestValidateTransfer(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*cqrs.ExecuteTransferCommand)
		expectedKind  apperr.Kind
		expectedField string
	}{
		{
			name:         "valid command passes",
			mutate:       func(cmd *cqrs.ExecuteTransferCommand) {},
			expectedKind: apperr.KindUnknown,
		},
		{
			name: "same wallet rejected",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.ReceiverWalletID = cmd.SenderWalletID
			},
			expectedKind:  apperr.KindValidation,
			expectedField: "sender_wallet_id",
		},
		{
			name: "zero amount rejected",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Amount = decimal.Zero
			},
			expectedKind:  apperr.KindValidation,
			expectedField: "amount",
		},
		{
			name: "negative amount rejected",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Amount = decimal.RequireFromString("-5.00")
			},
			expectedKind:  apperr.KindValidation,
			expectedField: "amount",
		},
		{
			name: "three decimal places rejected",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Amount = decimal.RequireFromString("10.001")
			},
			expectedKind:  apperr.KindValidation,
			expectedField: "amount",
		},
		{
			name: "whole number accepted",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Amount = decimal.RequireFromString("250")
			},
			expectedKind: apperr.KindUnknown,
		},
		{
			name: "single decimal place accepted",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Amount = decimal.RequireFromString("0.5")
			},
			expectedKind: apperr.KindUnknown,
		},
		{
			name: "smallest unit accepted",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Amount = decimal.RequireFromString("0.01")
			},
			expectedKind: apperr.KindUnknown,
		},
		{
			name: "unknown type rejected",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Type = "WIRE"
			},
			expectedKind:  apperr.KindValidation,
			expectedField: "type",
		},
		{
			name: "external transfer accepted",
			mutate: func(cmd *cqrs.ExecuteTransferCommand) {
				cmd.Type = models.TransactionTypeExternalTransfer
			},
			expectedKind: apperr.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCommand()
			tt.mutate(&cmd)
			err := validateTransfer(cmd)

			if tt.expectedKind == apperr.KindUnknown {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if kind := apperr.KindOf(err); kind != tt.expectedKind {
				t.Errorf("expected kind %v, got %v", tt.expectedKind, kind)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *apperr.Error, got %T", err)
			}
			if appErr.Field != tt.expectedField {
				t.Errorf("expected field %q, got %q", tt.expectedField, appErr.Field)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "serialization failure",
			err:      &pq.Error{Code: "40001"},
			expected: true,
		},
		{
			name:     "deadlock detected",
			err:      &pq.Error{Code: "40P01"},
			expected: true,
		},
		{
			name:     "wrapped deadlock",
			err:      fmt.Errorf("failed to apply delta: %w", &pq.Error{Code: "40P01"}),
			expected: true,
		},
		{
			name:     "unique violation is not retryable",
			err:      &pq.Error{Code: "23505"},
			expected: false,
		},
		{
			name:     "business rejection is not retryable",
			err:      apperr.InsufficientFunds("insufficient funds"),
			expected: false,
		},
		{
			name:     "plain error is not retryable",
			err:      errors.New("connection reset"),
			expected: false,
		},
		{
			name:     "nil error is not retryable",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
