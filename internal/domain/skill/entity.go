package skill

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
	LevelExpert       Level = "EXPERT"
)

var levelRank = map[Level]int{
	LevelBeginner:     1,
	LevelIntermediate: 2,
	LevelAdvanced:     3,
	LevelExpert:       4,
}

func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; !ok {
		return "", false
	}
	return l, true
}

// Rank is 0 for unknown levels.
func (l Level) Rank() int {
	return levelRank[l]
}

func (l Level) Valid() bool {
	return l.Rank() > 0
}

// Compare returns -1, 0 or 1 following BEGINNER < INTERMEDIATE < ADVANCED < EXPERT.
func (l Level) Compare(o Level) int {
	a, b := l.Rank(), o.Rank()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

type Skill struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Category      string
	Level         Level
	Certification *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type HistoryAction string

const (
	HistoryCreated      HistoryAction = "created"
	HistoryUpdated      HistoryAction = "updated"
	HistoryLevelChanged HistoryAction = "level_changed"
	HistoryEndorsed     HistoryAction = "endorsed"
)

// History is an append-only record of one skill mutation.
type History struct {
	ID          uuid.UUID
	SkillID     uuid.UUID
	Action      HistoryAction
	OldValue    *string
	NewValue    *string
	PerformedBy *uuid.UUID
	Reason      string
	CreatedAt   time.Time
}

type Endorsement struct {
	ID         uuid.UUID
	SkillID    uuid.UUID
	EndorserID uuid.UUID
	Comment    string
	CreatedAt  time.Time
}
