package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/models"
)

const (
	// defaultRetryAttempts bounds how many times a transient failure is
	// retried before [ErrStoreUnavailable] is surfaced.
	defaultRetryAttempts = 3

	// defaultRetryBackoff is the constant pause between attempts.
	defaultRetryBackoff = 200 * time.Millisecond
)

// retryingRecordRepository decorates a [RecordRepository] with bounded
// constant-backoff retries for transient failures. Only errors the
// classifier marks retryable are re-attempted; domain errors (not-found,
// validation) pass through on the first attempt. When the retry budget is
// exhausted, or the caller's context deadline fires, the last error is
// wrapped in [ErrStoreUnavailable] so callers see one retryable sentinel
// instead of driver details.
type retryingRecordRepository struct {
	inner      RecordRepository
	classifier ErrorClassificator
	attempts   uint64
	backoff    time.Duration
	logger     *logger.Logger
}

// NewRetryingRecordRepository wraps inner with transient-failure retries
// using the given classifier.
func NewRetryingRecordRepository(inner RecordRepository, classifier ErrorClassificator, log *logger.Logger) RecordRepository {
	return &retryingRecordRepository{
		inner:      inner,
		classifier: classifier,
		attempts:   defaultRetryAttempts,
		backoff:    defaultRetryBackoff,
		logger:     log,
	}
}

// do runs op under the retry policy.
func (r *retryingRecordRepository) do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(r.attempts, retry.NewConstant(r.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		opErr := op(ctx)
		if opErr == nil {
			return nil
		}

		if r.classifier.Classify(opErr) == Retryable {
			r.logger.Warn().
				Str("func", name).
				Err(opErr).
				Msg("transient store error, retrying")
			return retry.RetryableError(opErr)
		}

		return opErr
	})
	if err == nil {
		return nil
	}

	if r.classifier.Classify(err) == Retryable || isTimeout(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return err
}

// Create implements [RecordRepository].
func (r *retryingRecordRepository) Create(ctx context.Context, record models.Record) (models.Record, error) {
	var created models.Record
	err := r.do(ctx, "retryingRecordRepository.Create", func(ctx context.Context) error {
		var opErr error
		created, opErr = r.inner.Create(ctx, record)
		return opErr
	})
	return created, err
}

// List implements [RecordRepository].
func (r *retryingRecordRepository) List(ctx context.Context, ownerID string) ([]models.Record, error) {
	var records []models.Record
	err := r.do(ctx, "retryingRecordRepository.List", func(ctx context.Context) error {
		var opErr error
		records, opErr = r.inner.List(ctx, ownerID)
		return opErr
	})
	return records, err
}

// Get implements [RecordRepository].
func (r *retryingRecordRepository) Get(ctx context.Context, ownerID string, id string) (models.Record, error) {
	var record models.Record
	err := r.do(ctx, "retryingRecordRepository.Get", func(ctx context.Context) error {
		var opErr error
		record, opErr = r.inner.Get(ctx, ownerID, id)
		return opErr
	})
	return record, err
}

// Update implements [RecordRepository].
func (r *retryingRecordRepository) Update(ctx context.Context, ownerID string, id string, record models.Record) (models.Record, error) {
	var updated models.Record
	err := r.do(ctx, "retryingRecordRepository.Update", func(ctx context.Context) error {
		var opErr error
		updated, opErr = r.inner.Update(ctx, ownerID, id, record)
		return opErr
	})
	return updated, err
}

// Delete implements [RecordRepository].
func (r *retryingRecordRepository) Delete(ctx context.Context, ownerID string, id string) error {
	return r.do(ctx, "retryingRecordRepository.Delete", func(ctx context.Context) error {
		return r.inner.Delete(ctx, ownerID, id)
	})
}
