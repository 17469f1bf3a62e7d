package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// PostgresCategoryStore implements the store.CategoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCategoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of the
// CategoryStore interface.
func NewPostgresCategoryStore(db store.DBTX, log *slog.Logger) *PostgresCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresCategoryStore{
		db:     db,
		logger: log.With(slog.String("component", "category_store")),
	}
}

// Ensure PostgresCategoryStore implements store.CategoryStore interface
var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

const categoryColumns = `id, name, code, parent_id, kind, sort_order, generation_count, created_at, updated_at`

// scanCategory reads one category row. parent_id is NULL for subjects.
func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var cat domain.Category
	var parentID uuid.NullUUID
	var kind string

	err := scanner.Scan(
		&cat.ID,
		&cat.Name,
		&cat.Code,
		&parentID,
		&kind,
		&cat.SortOrder,
		&cat.GenerationCount,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		cat.ParentID = parentID.UUID
	}
	cat.Kind = domain.CategoryKind(kind)
	return &cat, nil
}

// GetSubject implements store.CategoryStore.GetSubject
// Returns store.ErrCategoryNotFound if the ID does not name a subject.
func (s *PostgresCategoryStore) GetSubject(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE id = $1 AND kind = $2
	`, categoryColumns)

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, id, domain.CategoryKindSubject))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subject not found",
				slog.String("subject_id", id.String()))
			return nil, store.ErrCategoryNotFound
		}
		log.Error("failed to get subject",
			slog.String("error", err.Error()),
			slog.String("subject_id", id.String()))
		return nil, MapError(err)
	}

	return cat, nil
}

// GetSubjects implements store.CategoryStore.GetSubjects
func (s *PostgresCategoryStore) GetSubjects(ctx context.Context) ([]*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE kind = $1
		ORDER BY sort_order, name
	`, categoryColumns)

	rows, err := s.db.QueryContext(ctx, query, domain.CategoryKindSubject)
	if err != nil {
		log.Error("failed to list subjects",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectCategories(rows)
}

// GetTypesUnder implements store.CategoryStore.GetTypesUnder
func (s *PostgresCategoryStore) GetTypesUnder(ctx context.Context, subjectID uuid.UUID) ([]*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE parent_id = $1 AND kind = $2
		ORDER BY sort_order, name
	`, categoryColumns)

	rows, err := s.db.QueryContext(ctx, query, subjectID, domain.CategoryKindType)
	if err != nil {
		log.Error("failed to list question types",
			slog.String("error", err.Error()),
			slog.String("subject_id", subjectID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectCategories(rows)
}

// GetType implements store.CategoryStore.GetType
// Returns store.ErrCategoryNotFound if no such type exists under the subject.
func (s *PostgresCategoryStore) GetType(ctx context.Context, code string, subjectID uuid.UUID) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE code = $1 AND parent_id = $2 AND kind = $3
	`, categoryColumns)

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, code, subjectID, domain.CategoryKindType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("question type not found",
				slog.String("type_code", code),
				slog.String("subject_id", subjectID.String()))
			return nil, store.ErrCategoryNotFound
		}
		log.Error("failed to get question type",
			slog.String("error", err.Error()),
			slog.String("type_code", code))
		return nil, MapError(err)
	}

	return cat, nil
}

func collectCategories(rows *sql.Rows) ([]*domain.Category, error) {
	var cats []*domain.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cats, nil
}
