package papergen

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// plannedUnit pairs a validated UnitConfig with the resolved question
// type category it targets. Read-only once built.
type plannedUnit struct {
	Config domain.UnitConfig
	Type   *domain.Category
}

// expandConfig validates the request against the taxonomy and produces
// the ordered unit list, ascending by display order.
//
// Explicit units are checked for: type code present under the subject,
// unique display orders, quantity and difficulty inside the accepted
// domain. With no explicit units the subject's question types are
// expanded automatically: one unit per type in sort order, quantity from
// the type's generation count hint (default 1), difficulty medium,
// display order by query position. Request-shape failures come back as
// ValidationErrors, raised before any job is submitted; taxonomy store
// failures propagate unwrapped.
func (s *Service) expandConfig(
	ctx context.Context,
	subjectID uuid.UUID,
	units []domain.UnitConfig,
) (*domain.Category, []plannedUnit, error) {
	subject, err := s.categories.GetSubject(ctx, subjectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, &ValidationError{
				Message: fmt.Sprintf("subject %s", subjectID),
				Err:     domain.ErrSubjectNotFound,
			}
		}
		return nil, nil, fmt.Errorf("resolving subject %s: %w", subjectID, err)
	}

	if len(units) == 0 {
		plans, err := s.expandAuto(ctx, subject)
		if err != nil {
			return nil, nil, err
		}
		return subject, plans, nil
	}

	plans := make([]plannedUnit, 0, len(units))
	seenOrders := make(map[int]bool, len(units))
	for _, cfg := range units {
		if err := cfg.Validate(); err != nil {
			return nil, nil, &ValidationError{
				Message: fmt.Sprintf("unit %q", cfg.TypeCode),
				Err:     err,
			}
		}
		if seenOrders[cfg.DisplayOrder] {
			return nil, nil, &ValidationError{
				Message: fmt.Sprintf("display order %d", cfg.DisplayOrder),
				Err:     domain.ErrDuplicateOrder,
			}
		}
		seenOrders[cfg.DisplayOrder] = true

		qType, err := s.categories.GetType(ctx, cfg.TypeCode, subject.ID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, nil, &ValidationError{
					Message: fmt.Sprintf("type code %q", cfg.TypeCode),
					Err:     domain.ErrUnknownTypeCode,
				}
			}
			return nil, nil, fmt.Errorf("resolving type %q: %w", cfg.TypeCode, err)
		}

		plans = append(plans, plannedUnit{Config: cfg, Type: qType})
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Config.DisplayOrder < plans[j].Config.DisplayOrder
	})

	return subject, plans, nil
}

// expandAuto builds the default unit list from the subject's configured
// question types. This is a convenience default, not user-authored.
func (s *Service) expandAuto(ctx context.Context, subject *domain.Category) ([]plannedUnit, error) {
	types, err := s.categories.GetTypesUnder(ctx, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("listing types under subject %q: %w", subject.Code, err)
	}
	if len(types) == 0 {
		return nil, &ValidationError{
			Message: fmt.Sprintf("subject %q", subject.Code),
			Err:     domain.ErrNoTypesUnderSubj,
		}
	}

	plans := make([]plannedUnit, 0, len(types))
	for i, qType := range types {
		plans = append(plans, plannedUnit{
			Config: domain.UnitConfig{
				TypeCode:     qType.Code,
				DisplayOrder: i + 1,
				Quantity:     qType.QuantityHint(),
				Difficulty:   domain.DifficultyMedium,
			},
			Type: qType,
		})
	}

	return plans, nil
}
