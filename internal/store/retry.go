package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	txRetryLimit   = 3
	txRetryBackoff = 50 * time.Millisecond
)

// RetryingTransaction runs f inside a store transaction and retries the
// whole unit on transient infrastructure failures. Failed attempts roll
// back completely; a partial unit is never retried or left behind.
func RetryingTransaction(ctx context.Context, s Store, f func(tx Store) error) error {
	var err error
	for attempt := 1; attempt <= txRetryLimit; attempt++ {
		err = s.Transaction(ctx, f)
		if err == nil || !IsTransient(err) {
			return err
		}

		logrus.Warnf("transient failure on transaction attempt %d/%d: %v", attempt, txRetryLimit, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(txRetryBackoff * time.Duration(attempt)):
		}
	}

	return err
}

// IsTransient reports whether an error is worth retrying as a whole unit.
// Domain errors (not found, state conflicts) and cancellations never are.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrDocumentNotFound) || errors.Is(err, ErrStateConflict) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) {
		return true
	}

	msg := err.Error()
	for _, hint := range []string{
		"database is locked",  // sqlite busy
		"connection refused",  // backend down
		"connection reset",    // broken pipe mid-transaction
		"bad connection",      // stale pooled connection
		"too many connections",
	} {
		if strings.Contains(msg, hint) {
			return true
		}
	}

	return false
}
