package dto

import (
	"time"

	"skill-staffing/internal/domain/skill"

	"github.com/google/uuid"
)

type CreateSkillRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Category      string  `json:"category" validate:"max=100"`
	Level         string  `json:"level" validate:"required,skill_level"`
	Certification *string `json:"certification" validate:"omitempty,max=200"`
}

type UpdateSkillRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=100"`
	Category      *string `json:"category" validate:"omitempty,max=100"`
	Level         *string `json:"level" validate:"omitempty,skill_level"`
	Certification *string `json:"certification" validate:"omitempty,max=200"`
	Reason        string  `json:"reason" validate:"max=1000"`
}

type EndorseSkillRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

type SkillResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Level         string    `json:"level"`
	Certification *string   `json:"certification"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewSkillResponse(s skill.Skill) SkillResponse {
	return SkillResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Name:          s.Name,
		Category:      s.Category,
		Level:         string(s.Level),
		Certification: s.Certification,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func NewSkillResponses(items []skill.Skill) []SkillResponse {
	out := make([]SkillResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewSkillResponse(it))
	}
	return out
}

type SkillHistoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	SkillID     uuid.UUID  `json:"skill_id"`
	Action      string     `json:"action"`
	OldValue    *string    `json:"old_value"`
	NewValue    *string    `json:"new_value"`
	PerformedBy *uuid.UUID `json:"performed_by"`
	Reason      string     `json:"reason"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewSkillHistoryResponses(items []skill.History) []SkillHistoryResponse {
	out := make([]SkillHistoryResponse, 0, len(items))
	for _, h := range items {
		out = append(out, SkillHistoryResponse{
			ID:          h.ID,
			SkillID:     h.SkillID,
			Action:      string(h.Action),
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			PerformedBy: h.PerformedBy,
			Reason:      h.Reason,
			CreatedAt:   h.CreatedAt,
		})
	}
	return out
}

type EndorsementResponse struct {
	ID         uuid.UUID `json:"id"`
	SkillID    uuid.UUID `json:"skill_id"`
	EndorserID uuid.UUID `json:"endorser_id"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewEndorsementResponse(e skill.Endorsement) EndorsementResponse {
	return EndorsementResponse{ID: e.ID, SkillID: e.SkillID, EndorserID: e.EndorserID, Comment: e.Comment, CreatedAt: e.CreatedAt}
}
