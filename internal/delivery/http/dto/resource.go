package dto

import (
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/project"

	"github.com/google/uuid"
)

type AssignResourceRequest struct {
	UserID     string  `json:"user_id" validate:"required,uuid"`
	Role       string  `json:"role" validate:"max=100"`
	Allocation *int    `json:"allocation" validate:"required,min=0,max=100"`
	StartDate  *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Note       string  `json:"note" validate:"max=1000"`
}

// UpdateResourceRequest changes only the fields that are sent. A date sent as
// "" makes that side of the range open-ended.
type UpdateResourceRequest struct {
	Role       *string `json:"role" validate:"omitempty,max=100"`
	Allocation *int    `json:"allocation" validate:"omitempty,min=0,max=100"`
	StartDate  *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Note       string  `json:"note" validate:"max=1000"`
}

type ResourceResponse struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	UserID     uuid.UUID `json:"user_id"`
	Role       string    `json:"role"`
	Allocation int       `json:"allocation"`
	StartDate  *string   `json:"start_date"`
	EndDate    *string   `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewResourceResponse(r project.Resource) ResourceResponse {
	return ResourceResponse{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		UserID:     r.UserID,
		Role:       r.Role,
		Allocation: r.Allocation,
		StartDate:  formatDate(r.StartDate),
		EndDate:    formatDate(r.EndDate),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func NewResourceResponses(items []project.Resource) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewResourceResponse(it))
	}
	return out
}

type ResourceHistoryResponse struct {
	ID                 uuid.UUID `json:"id"`
	ResourceID         uuid.UUID `json:"resource_id"`
	ProjectID          uuid.UUID `json:"project_id"`
	UserID             uuid.UUID `json:"user_id"`
	Action             string    `json:"action"`
	PreviousRole       *string   `json:"previous_role"`
	NewRole            *string   `json:"new_role"`
	PreviousAllocation *int      `json:"previous_allocation"`
	NewAllocation      *int      `json:"new_allocation"`
	PerformedBy        uuid.UUID `json:"performed_by"`
	Note               string    `json:"note"`
	CreatedAt          time.Time `json:"created_at"`
}

func NewResourceHistoryResponses(items []project.ResourceHistory) []ResourceHistoryResponse {
	out := make([]ResourceHistoryResponse, 0, len(items))
	for _, h := range items {
		out = append(out, ResourceHistoryResponse{
			ID:                 h.ID,
			ResourceID:         h.ResourceID,
			ProjectID:          h.ProjectID,
			UserID:             h.UserID,
			Action:             string(h.Action),
			PreviousRole:       h.PreviousRole,
			NewRole:            h.NewRole,
			PreviousAllocation: h.PreviousAllocation,
			NewAllocation:      h.NewAllocation,
			PerformedBy:        h.PerformedBy,
			Note:               h.Note,
			CreatedAt:          h.CreatedAt,
		})
	}
	return out
}

type AllocationResponse struct {
	UserID      uuid.UUID          `json:"user_id"`
	AsOf        string             `json:"as_of"`
	Total       int                `json:"total"`
	Available   int                `json:"available"`
	Assignments []ResourceResponse `json:"assignments"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
