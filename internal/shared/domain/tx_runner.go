package domain

import (
	"context"
)

// TransactionRunner executes fn atomically: every repository call made
// through the ctx it passes down commits or rolls back as one unit.
type TransactionRunner interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}
