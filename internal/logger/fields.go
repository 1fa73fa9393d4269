package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRunID is the structured log field key for the identifier of a single run.
	FieldRunID = "run_id"
	// FieldLedgerKind is the structured log field key for the ledger backend name.
	FieldLedgerKind = "ledger_kind"
	// FieldLedgerTarget is the structured log field key for the ledger location
	// (file path, spreadsheet id or table).
	FieldLedgerTarget = "ledger_target"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// LedgerFields returns the fields that describe where matches are recorded.
func LedgerFields(kind, target string) []zap.Field {
	return StringFields(
		StringField{Key: FieldLedgerKind, Value: kind},
		StringField{Key: FieldLedgerTarget, Value: target},
	)
}

// WithLedgerFields attaches the ledger fields to the provided logger.
func WithLedgerFields(logger *zap.Logger, kind, target string) *zap.Logger {
	return WithFields(logger, LedgerFields(kind, target)...)
}

// WithRunID attaches the run identifier to the provided logger.
func WithRunID(logger *zap.Logger, runID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRunID, Value: runID})...)
}
