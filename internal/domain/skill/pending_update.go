package skill

import (
	"time"

	"github.com/google/uuid"
)

type UpdateStatus string

const (
	StatusPending  UpdateStatus = "PENDING"
	StatusApproved UpdateStatus = "APPROVED"
	StatusRejected UpdateStatus = "REJECTED"
)

func (s UpdateStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseUpdateStatus(s string) (UpdateStatus, bool) {
	switch st := UpdateStatus(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	default:
		return "", false
	}
}

// PendingUpdate is a proposed change to a skill's level, or a proposal for a
// brand-new skill when SkillID is nil.
type PendingUpdate struct {
	ID     uuid.UUID
	UserID uuid.UUID
	// SkillID stays nil for new-skill proposals.
	SkillID *uuid.UUID

	CurrentName     *string
	CurrentCategory *string
	CurrentLevel    *Level

	ProposedName     string
	ProposedCategory string
	ProposedLevel    Level
	Justification    string

	Status           UpdateStatus
	ReviewerID       *uuid.UUID
	ReviewerComments string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ApprovedAt *time.Time
	RejectedAt *time.Time
}

func (u PendingUpdate) IsNewSkill() bool {
	return u.SkillID == nil
}

// Summary renders the proposal for notifications, e.g. "Go (ADVANCED -> EXPERT)".
func (u PendingUpdate) Summary() string {
	if u.CurrentLevel == nil {
		return u.ProposedName + " (new, " + string(u.ProposedLevel) + ")"
	}
	return u.ProposedName + " (" + string(*u.CurrentLevel) + " -> " + string(u.ProposedLevel) + ")"
}
