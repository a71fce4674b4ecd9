package dto

import (
	"time"

	"skill-staffing/internal/domain/skill"

	"github.com/google/uuid"
)

type SubmitSkillUpdateRequest struct {
	SkillID          *string `json:"skill_id" validate:"omitempty,uuid"`
	ProposedName     string  `json:"proposed_name" validate:"max=100"`
	ProposedCategory string  `json:"proposed_category" validate:"max=100"`
	ProposedLevel    string  `json:"proposed_level" validate:"required,skill_level"`
	Justification    string  `json:"justification" validate:"max=2000"`
}

type AssignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required,uuid"`
}

type ReviewSkillUpdateRequest struct {
	Comments string `json:"comments" validate:"max=2000"`
}

type SkillUpdateResponse struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	SkillID          *uuid.UUID `json:"skill_id"`
	CurrentName      *string    `json:"current_name"`
	CurrentCategory  *string    `json:"current_category"`
	CurrentLevel     *string    `json:"current_level"`
	ProposedName     string     `json:"proposed_name"`
	ProposedCategory string     `json:"proposed_category"`
	ProposedLevel    string     `json:"proposed_level"`
	Justification    string     `json:"justification"`
	Status           string     `json:"status"`
	ReviewerID       *uuid.UUID `json:"reviewer_id"`
	ReviewerComments string     `json:"reviewer_comments"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ApprovedAt       *time.Time `json:"approved_at"`
	RejectedAt       *time.Time `json:"rejected_at"`
}

func NewSkillUpdateResponse(u skill.PendingUpdate) SkillUpdateResponse {
	res := SkillUpdateResponse{
		ID:               u.ID,
		UserID:           u.UserID,
		SkillID:          u.SkillID,
		CurrentName:      u.CurrentName,
		CurrentCategory:  u.CurrentCategory,
		ProposedName:     u.ProposedName,
		ProposedCategory: u.ProposedCategory,
		ProposedLevel:    string(u.ProposedLevel),
		Justification:    u.Justification,
		Status:           string(u.Status),
		ReviewerID:       u.ReviewerID,
		ReviewerComments: u.ReviewerComments,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
		ApprovedAt:       u.ApprovedAt,
		RejectedAt:       u.RejectedAt,
	}
	if u.CurrentLevel != nil {
		lvl := string(*u.CurrentLevel)
		res.CurrentLevel = &lvl
	}
	return res
}

func NewSkillUpdateResponses(items []skill.PendingUpdate) []SkillUpdateResponse {
	out := make([]SkillUpdateResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewSkillUpdateResponse(it))
	}
	return out
}
