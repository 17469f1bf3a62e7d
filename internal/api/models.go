package api

import (
	"github.com/google/uuid"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// UnitConfigRequest is one requested generation unit of a paper.
type UnitConfigRequest struct {
	TypeCode     string `json:"type_code"     validate:"required"`
	DisplayOrder int    `json:"display_order" validate:"required,min=1"`
	Quantity     int    `json:"quantity"      validate:"required,min=1,max=10"`
	Difficulty   string `json:"difficulty"    validate:"required,oneof=simple medium hard"`
	Theme        string `json:"theme"         validate:"max=200"`
}

// GeneratePaperRequest defines the payload for the paper generation endpoint.
// An empty Units slice requests auto mode: one unit per question type under
// the subject, in taxonomy order.
type GeneratePaperRequest struct {
	SubjectID    uuid.UUID           `json:"subject_id"    validate:"required"`
	Units        []UnitConfigRequest `json:"units"         validate:"omitempty,dive"`
	DeepThinking bool                `json:"deep_thinking"`
}

// toDomain converts the request units into domain configs.
func (r GeneratePaperRequest) toDomain() []domain.UnitConfig {
	units := make([]domain.UnitConfig, len(r.Units))
	for i, u := range r.Units {
		units[i] = domain.UnitConfig{
			TypeCode:     u.TypeCode,
			DisplayOrder: u.DisplayOrder,
			Quantity:     u.Quantity,
			Difficulty:   domain.Difficulty(u.Difficulty),
			Theme:        u.Theme,
		}
	}
	return units
}

// PaperListResponse defines the paginated response for the paper history
// endpoint.
type PaperListResponse struct {
	Papers []*domain.Paper `json:"papers"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// PaperDetailResponse defines the response for the single paper endpoint.
type PaperDetailResponse struct {
	Paper   *domain.Paper         `json:"paper"`
	Details []*domain.PaperDetail `json:"details"`
}

// CategoryResponse is a taxonomy node in API responses.
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	SortOrder int       `json:"sort_order"`
}

func toCategoryResponses(categories []*domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryResponse{
			ID:        c.ID,
			Name:      c.Name,
			Code:      c.Code,
			SortOrder: c.SortOrder,
		}
	}
	return out
}
