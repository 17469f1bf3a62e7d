package postgres

import (
	"context"
	"log/slog"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// PostgresExampleStore implements the store.ExampleStore interface using
// a PostgreSQL database as the storage backend.
type PostgresExampleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExampleStore creates a new PostgreSQL implementation of the
// ExampleStore interface.
func NewPostgresExampleStore(db store.DBTX, log *slog.Logger) *PostgresExampleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresExampleStore{
		db:     db,
		logger: log.With(slog.String("component", "example_store")),
	}
}

// Ensure PostgresExampleStore implements store.ExampleStore interface
var _ store.ExampleStore = (*PostgresExampleStore)(nil)

// GetExamples implements store.ExampleStore.GetExamples
func (s *PostgresExampleStore) GetExamples(ctx context.Context, subjectCode, typeCode string, difficulty domain.Difficulty, limit int) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT content
		FROM question_examples
		WHERE subject_code = $1 AND type_code = $2 AND difficulty = $3
		ORDER BY created_at, id
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, subjectCode, typeCode, string(difficulty), limit)
	if err != nil {
		log.Error("failed to query example questions",
			slog.String("error", err.Error()),
			slog.String("subject_code", subjectCode),
			slog.String("type_code", typeCode),
			slog.String("difficulty", string(difficulty)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var examples []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, MapError(err)
		}
		examples = append(examples, content)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return examples, nil
}
