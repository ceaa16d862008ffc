package db

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"opsboard/internal/domain/faults"
	"opsboard/internal/platform/config"
)

// RetryPolicy bounds the exponential backoff applied to idempotent store
// operations. Non-idempotent writes must not go through Do.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   backoff.ExponentialBackOff
}

func NewRetryPolicy(cfg config.Config) RetryPolicy {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.StoreRetryBase
	return RetryPolicy{MaxAttempts: cfg.StoreRetryAttempts, BaseDelay: *b}
}

// Do runs op, retrying transient transport failures with exponential backoff.
// Domain errors pass through untouched; exhausted transients surface as
// faults.ErrUnavailable.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if p.MaxAttempts <= 1 {
		return op(ctx)
	}
	delays := p.BaseDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(&delays, uint64(p.MaxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		if err := op(ctx); err != nil {
			if transient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}, policy)
	if err == nil {
		return nil
	}
	if transient(err) {
		return fmt.Errorf("%w: %v", faults.ErrUnavailable, err)
	}
	return err
}

func transient(err error) bool {
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}
