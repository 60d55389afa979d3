package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCollaborator names the external collaborator (scraper, matcher, email).
	FieldCollaborator = "collaborator"
	// FieldProvider is the backend behind a collaborator, e.g. gemini or smtp.
	FieldProvider = "provider"
	// FieldModel is the AI model identifier, when there is one.
	FieldModel = "ai_model"
	// FieldRequestID carries the X-Request-ID of the HTTP request being served.
	FieldRequestID = "request_id"
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

// WithFields attaches fields to the logger, falling back to a no-op logger
// when nil is given.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ForCollaborator returns a named child logger tagged with the collaborator,
// its provider and, for AI backends, the model. Empty values are skipped.
func ForCollaborator(logger *zap.Logger, collaborator, provider, model string) *zap.Logger {
	fields := StringFields(
		StringField{Key: FieldCollaborator, Value: collaborator},
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)

	l := WithFields(logger, fields...)
	if name := strings.TrimSpace(collaborator); name != "" {
		l = l.Named(name)
	}
	return l
}
