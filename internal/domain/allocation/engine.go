package allocation

import (
	"context"
	"fmt"
	"time"

	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/project"

	"github.com/google/uuid"
)

const MaxAllocation = 100

// Reader is the query surface the engine needs. Inside a workflow it must be
// bound to the same transaction as the write that follows the check.
type Reader interface {
	FindActiveByUser(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]project.Resource, error)
	FindOverlappingByUser(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]project.Resource, error)
}

type Engine struct {
	resources Reader
}

func NewEngine(resources Reader) *Engine {
	return &Engine{resources: resources}
}

func ValidAllocation(v int) bool {
	return v >= 0 && v <= MaxAllocation
}

// CurrentTotalAllocation sums allocation over the user's assignments active on asOf.
func (e *Engine) CurrentTotalAllocation(ctx context.Context, userID uuid.UUID, asOf time.Time) (int, error) {
	return e.currentTotal(ctx, userID, asOf, nil)
}

// ValidateNewAllocation checks the total on asOf, ignoring excluding, plus proposed.
func (e *Engine) ValidateNewAllocation(ctx context.Context, userID uuid.UUID, asOf time.Time, proposed int, excluding *uuid.UUID) error {
	if !ValidAllocation(proposed) {
		return domain.InvalidInputf("allocation must be between 0 and %d, got %d", MaxAllocation, proposed)
	}
	day := domain.DateOnly(asOf)
	current, err := e.currentTotal(ctx, userID, day, excluding)
	if err != nil {
		return err
	}
	if current+proposed > MaxAllocation {
		return &domain.AllocationExceededError{
			Current:   current,
			Requested: proposed,
			Resulting: current + proposed,
			AsOf:      day,
		}
	}
	return nil
}

// ValidateWindow checks the peak total over every day of [start, end], so an
// assignment starting next month is checked against next month's staffing too.
func (e *Engine) ValidateWindow(ctx context.Context, userID uuid.UUID, start, end *time.Time, proposed int, excluding *uuid.UUID) error {
	if !ValidAllocation(proposed) {
		return domain.InvalidInputf("allocation must be between 0 and %d, got %d", MaxAllocation, proposed)
	}
	start, end = domain.DatePtr(start), domain.DatePtr(end)
	if start != nil && end != nil && start.After(*end) {
		return domain.InvalidInputf("start date %s is after end date %s", start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	}

	items, err := e.resources.FindOverlappingByUser(ctx, userID, start, end)
	if err != nil {
		return fmt.Errorf("find overlapping resources: %w", err)
	}

	peak, at := PeakAllocation(without(items, excluding), start, end)
	if peak+proposed > MaxAllocation {
		return &domain.AllocationExceededError{
			Current:   peak,
			Requested: proposed,
			Resulting: peak + proposed,
			AsOf:      at,
		}
	}
	return nil
}

func (e *Engine) AvailableCapacity(ctx context.Context, userID uuid.UUID, asOf time.Time) (int, error) {
	total, err := e.CurrentTotalAllocation(ctx, userID, asOf)
	if err != nil {
		return 0, err
	}
	if total >= MaxAllocation {
		return 0, nil
	}
	return MaxAllocation - total, nil
}

func (e *Engine) currentTotal(ctx context.Context, userID uuid.UUID, asOf time.Time, excluding *uuid.UUID) (int, error) {
	items, err := e.resources.FindActiveByUser(ctx, userID, domain.DateOnly(asOf))
	if err != nil {
		return 0, fmt.Errorf("find active resources: %w", err)
	}
	total := 0
	for _, it := range without(items, excluding) {
		total += it.Allocation
	}
	return total, nil
}

// PeakAllocation returns the highest combined allocation on any day of
// [start, end] and the first day it is reached. A nil bound is open-ended; the
// zero time is returned when the peak lies in the open past.
//
// The total only rises at an assignment's start date, so the window start and
// the start dates inside the window are the only candidates.
func PeakAllocation(items []project.Resource, start, end *time.Time) (int, time.Time) {
	var from time.Time
	if start != nil {
		from = *start
	}

	candidates := []time.Time{from}
	for _, it := range items {
		if it.StartDate == nil || it.StartDate.Before(from) {
			continue
		}
		if end != nil && it.StartDate.After(*end) {
			continue
		}
		candidates = append(candidates, *it.StartDate)
	}

	peak, at := -1, from
	for _, day := range candidates {
		sum := 0
		for _, it := range items {
			if it.ActiveOn(day) {
				sum += it.Allocation
			}
		}
		if sum > peak || (sum == peak && day.Before(at)) {
			peak, at = sum, day
		}
	}
	return peak, at
}

func without(items []project.Resource, excluding *uuid.UUID) []project.Resource {
	if excluding == nil {
		return items
	}
	out := make([]project.Resource, 0, len(items))
	for _, it := range items {
		if it.ID == *excluding {
			continue
		}
		out = append(out, it)
	}
	return out
}
