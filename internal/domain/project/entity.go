package project

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Project struct {
	ID        uuid.UUID
	Name      string
	ClientID  *uuid.UUID
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resource assigns a user to a project. Start and End are inclusive calendar
// dates; nil means open-ended.
type Resource struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	UserID     uuid.UUID
	Role       string
	Allocation int
	StartDate  *time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActiveOn reports whether the date range contains day. The zero time stands
// for the open past.
func (r Resource) ActiveOn(day time.Time) bool {
	if r.StartDate != nil && day.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && day.After(*r.EndDate) {
		return false
	}
	return true
}

// Overlaps reports whether the resource is active on any day of [start, end].
func (r Resource) Overlaps(start, end *time.Time) bool {
	if r.StartDate != nil && end != nil && r.StartDate.After(*end) {
		return false
	}
	if r.EndDate != nil && start != nil && r.EndDate.Before(*start) {
		return false
	}
	return true
}

type HistoryAction string

const (
	ActionAdded                    HistoryAction = "added"
	ActionRemoved                  HistoryAction = "removed"
	ActionRoleChanged              HistoryAction = "role_changed"
	ActionAllocationChanged        HistoryAction = "allocation_changed"
	ActionRoleAndAllocationChanged HistoryAction = "role_and_allocation_changed"
	ActionDatesChanged             HistoryAction = "dates_changed"
)

// ResourceHistory is immutable once written and outlives its resource.
type ResourceHistory struct {
	ID                 uuid.UUID
	ResourceID         uuid.UUID
	ProjectID          uuid.UUID
	UserID             uuid.UUID
	Action             HistoryAction
	PreviousRole       *string
	NewRole            *string
	PreviousAllocation *int
	NewAllocation      *int
	PerformedBy        uuid.UUID
	Note               string
	CreatedAt          time.Time
}
