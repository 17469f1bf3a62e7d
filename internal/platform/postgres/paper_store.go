package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// PostgresPaperStore implements the store.PaperStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPaperStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPaperStore creates a new PostgreSQL implementation of the
// PaperStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresPaperStore(db store.DBTX, log *slog.Logger) *PostgresPaperStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresPaperStore{
		db:     db,
		logger: log.With(slog.String("component", "paper_store")),
	}
}

// Ensure PostgresPaperStore implements store.PaperStore interface
var _ store.PaperStore = (*PostgresPaperStore)(nil)

// WithTx implements store.PaperStore.WithTx
// It returns a new PaperStore bound to the given transaction, so the paper
// row and its detail rows can be committed atomically.
func (s *PostgresPaperStore) WithTx(tx store.DBTX) store.PaperStore {
	return &PostgresPaperStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreatePaper implements store.PaperStore.CreatePaper
// Returns store.ErrInvalidEntity if the owner or subject does not exist.
func (s *PostgresPaperStore) CreatePaper(ctx context.Context, paper *domain.Paper) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := paper.Validate(); err != nil {
		log.Warn("paper validation failed during create",
			slog.String("error", err.Error()),
			slog.String("paper_id", paper.ID.String()))
		return err
	}

	query := `
		INSERT INTO papers (id, user_id, subject_id, name, total_questions, deep_thinking, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		paper.ID,
		paper.UserID,
		paper.SubjectID,
		paper.Name,
		paper.TotalQuestions,
		paper.DeepThinking,
		paper.CreatedAt,
		paper.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create paper",
			slog.String("error", err.Error()),
			slog.String("paper_id", paper.ID.String()),
			slog.String("user_id", paper.UserID.String()))
		return MapError(err)
	}

	log.Info("paper created successfully",
		slog.String("paper_id", paper.ID.String()),
		slog.String("user_id", paper.UserID.String()),
		slog.Int("total_questions", paper.TotalQuestions))
	return nil
}

// CreateDetails implements store.PaperStore.CreateDetails
func (s *PostgresPaperStore) CreateDetails(ctx context.Context, details []*domain.PaperDetail) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO paper_details (id, paper_id, type_code, type_name, difficulty, quantity, theme, questions, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, detail := range details {
		if err := detail.Validate(); err != nil {
			log.Warn("paper detail validation failed",
				slog.String("error", err.Error()),
				slog.String("paper_id", detail.PaperID.String()),
				slog.Int("display_order", detail.DisplayOrder))
			return err
		}

		_, err := s.db.ExecContext(
			ctx,
			query,
			detail.ID,
			detail.PaperID,
			detail.TypeCode,
			detail.TypeName,
			detail.Difficulty,
			detail.Quantity,
			detail.Theme,
			[]byte(detail.Questions),
			detail.DisplayOrder,
			detail.CreatedAt,
		)
		if err != nil {
			log.Error("failed to create paper detail",
				slog.String("error", err.Error()),
				slog.String("paper_id", detail.PaperID.String()),
				slog.Int("display_order", detail.DisplayOrder))
			return MapError(err)
		}
	}

	return nil
}

// ListByUser implements store.PaperStore.ListByUser
func (s *PostgresPaperStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Paper, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	countQuery := `SELECT COUNT(*) FROM papers WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		log.Error("failed to count papers",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	query := `
		SELECT id, user_id, subject_id, name, total_questions, deep_thinking, created_at, updated_at
		FROM papers
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list papers",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var papers []*domain.Paper
	for rows.Next() {
		var p domain.Paper
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.SubjectID,
			&p.Name,
			&p.TotalQuestions,
			&p.DeepThinking,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, MapError(err)
		}
		papers = append(papers, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return papers, total, nil
}

// GetByID implements store.PaperStore.GetByID
// Returns store.ErrPaperNotFound if the paper does not exist.
func (s *PostgresPaperStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, subject_id, name, total_questions, deep_thinking, created_at, updated_at
		FROM papers
		WHERE id = $1
	`

	var p domain.Paper
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&p.SubjectID,
		&p.Name,
		&p.TotalQuestions,
		&p.DeepThinking,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("paper not found",
				slog.String("paper_id", id.String()))
			return nil, store.ErrPaperNotFound
		}
		log.Error("failed to get paper",
			slog.String("error", err.Error()),
			slog.String("paper_id", id.String()))
		return nil, MapError(err)
	}

	return &p, nil
}

// GetDetails implements store.PaperStore.GetDetails
func (s *PostgresPaperStore) GetDetails(ctx context.Context, paperID uuid.UUID) ([]*domain.PaperDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, paper_id, type_code, type_name, difficulty, quantity, theme, questions, display_order, created_at
		FROM paper_details
		WHERE paper_id = $1
		ORDER BY display_order
	`

	rows, err := s.db.QueryContext(ctx, query, paperID)
	if err != nil {
		log.Error("failed to get paper details",
			slog.String("error", err.Error()),
			slog.String("paper_id", paperID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var details []*domain.PaperDetail
	for rows.Next() {
		var d domain.PaperDetail
		var difficulty string
		var questions []byte
		err := rows.Scan(
			&d.ID,
			&d.PaperID,
			&d.TypeCode,
			&d.TypeName,
			&difficulty,
			&d.Quantity,
			&d.Theme,
			&questions,
			&d.DisplayOrder,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		d.Difficulty = domain.Difficulty(difficulty)
		d.Questions = questions
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return details, nil
}

// Delete implements store.PaperStore.Delete
// Detail rows are removed by the ON DELETE CASCADE constraint.
// Returns store.ErrPaperNotFound if the paper does not exist.
func (s *PostgresPaperStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM papers WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete paper",
			slog.String("error", err.Error()),
			slog.String("paper_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "paper"); err != nil {
		return store.ErrPaperNotFound
	}

	log.Info("paper deleted",
		slog.String("paper_id", id.String()))
	return nil
}
