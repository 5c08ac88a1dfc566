package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/datavault/internal/apperror"
	"github.com/sakif/datavault/internal/model"
	"github.com/sakif/datavault/internal/repository"
)

// Key and value size limits, matching the stored column widths.
const (
	MaxKeyLength   = 100
	MaxValueLength = 100
)

const (
	msgInvalidKey   = "The provided key is not valid or missing."
	msgInvalidValue = "The provided value is not valid or missing."
)

// RecordService enforces the key-value lifecycle rules.
//
// Per key the lifecycle is: absent → present (Store) → present (Update,
// value only) → absent (Delete). Input validation happens here, before any
// store access; existence and uniqueness are the repository's business.
type RecordService struct {
	records repository.RecordRepository
	logger  *slog.Logger
}

// NewRecordService creates a RecordService.
func NewRecordService(records repository.RecordRepository, logger *slog.Logger) *RecordService {
	return &RecordService{
		records: records,
		logger:  logger,
	}
}

// Store creates a new record (store-if-absent). A key or value that is
// blank after trimming, or over the length limit, is rejected before the
// store is touched; an existing key fails with KEY_EXISTS and leaves the
// stored value untouched.
func (s *RecordService) Store(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	rec := &model.Record{Key: key, Value: value}
	if err := s.records.Create(ctx, rec); err != nil {
		return fmt.Errorf("storing record: %w", err)
	}

	s.logger.Info("record stored", slog.String("key", key))
	return nil
}

// Get returns the record for key, or KEY_NOT_FOUND.
func (s *RecordService) Get(ctx context.Context, key string) (*model.Record, error) {
	rec, err := s.records.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	return rec, nil
}

// Update replaces the value under an existing key (update-if-present).
// The new value is validated like Store's; an absent key fails with
// KEY_NOT_FOUND and is not created.
func (s *RecordService) Update(ctx context.Context, key, value string) error {
	if err := validateValue(value); err != nil {
		return err
	}

	if err := s.records.UpdateValue(ctx, key, value); err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	s.logger.Info("record updated", slog.String("key", key))
	return nil
}

// Delete removes the record under key (delete-if-present). Deleting an
// absent key fails with KEY_NOT_FOUND — including a repeated delete, which
// is an idempotent failure rather than a fault.
func (s *RecordService) Delete(ctx context.Context, key string) error {
	if err := s.records.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	s.logger.Info("record deleted", slog.String("key", key))
	return nil
}

// validateKey rejects keys that are blank after trimming or over the
// column limit. The key is stored as sent — trimming is only for the
// emptiness test, so a client's key round-trips byte for byte.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || len(key) > MaxKeyLength {
		return apperror.Validation(apperror.CodeInvalidKey, msgInvalidKey)
	}
	return nil
}

func validateValue(value string) error {
	if strings.TrimSpace(value) == "" || len(value) > MaxValueLength {
		return apperror.Validation(apperror.CodeInvalidValue, msgInvalidValue)
	}
	return nil
}
