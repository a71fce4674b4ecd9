package handler

import (
	"context"
	"strings"

	"skill-staffing/internal/delivery/http/dto"
	"skill-staffing/internal/delivery/http/middleware"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/pkg/response"
	"skill-staffing/internal/usecase/skillupdate"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SkillUpdateHandler struct {
	uc skillupdate.Usecase
}

func NewSkillUpdateHandler(uc skillupdate.Usecase) *SkillUpdateHandler {
	return &SkillUpdateHandler{uc: uc}
}

func (h *SkillUpdateHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	reviewers := middleware.RequireRole(user.ReviewerRoles...)

	grp := r.Group("/skill-updates")
	grp.Post("/", h.Submit)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Put("/:id/reviewer", reviewers, h.AssignReviewer)
	grp.Post("/:id/approve", reviewers, h.Approve)
	grp.Post("/:id/reject", reviewers, h.Reject)
	grp.Delete("/:id", middleware.RequireRole(user.RoleAdmin), h.Delete)
}

func (h *SkillUpdateHandler) Submit(c fiber.Ctx) error {
	userID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req dto.SubmitSkillUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	level, _ := skill.ParseLevel(req.ProposedLevel)

	created, err := h.uc.Submit(c.Context(), skillupdate.SubmitInput{
		RequesterID:      userID,
		SkillID:          parseUUIDPtr(req.SkillID),
		ProposedName:     req.ProposedName,
		ProposedCategory: req.ProposedCategory,
		ProposedLevel:    level,
		Justification:    req.Justification,
	})
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, "Skill update submitted", dto.NewSkillUpdateResponse(created))
}

// List shows employees only their own requests.
func (h *SkillUpdateHandler) List(c fiber.Ctx) error {
	userID, role, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var f skillupdate.ListFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st, ok := skill.ParseUpdateStatus(strings.ToUpper(raw))
		if !ok {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", nil, nil)
		}
		f.Status = &st
	}
	if f.RequesterID, err = queryUUID(c, "requester_id"); err != nil {
		return err
	}
	if f.ReviewerID, err = queryUUID(c, "reviewer_id"); err != nil {
		return err
	}
	if f.Limit, err = parseQueryIntStrict(c, "limit", 0); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
	}
	if f.Offset, err = parseQueryIntStrict(c, "offset", 0); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid offset", nil, err)
	}

	if !role.CanReview() {
		f.RequesterID = &userID
	}

	items, err := h.uc.List(c.Context(), f)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillUpdateResponses(items))
}

func (h *SkillUpdateHandler) Get(c fiber.Ctx) error {
	userID, role, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	u, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	if u.UserID != userID && !role.CanReview() {
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillUpdateResponse(u))
}

func (h *SkillUpdateHandler) AssignReviewer(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AssignReviewerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	reviewerID := parseUUIDPtr(&req.ReviewerID)

	u, err := h.uc.AssignReviewer(c.Context(), id, *reviewerID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, "Reviewer assigned", dto.NewSkillUpdateResponse(u))
}

func (h *SkillUpdateHandler) Approve(c fiber.Ctx) error {
	return h.review(c, h.uc.Approve, "Skill update approved")
}

func (h *SkillUpdateHandler) Reject(c fiber.Ctx) error {
	return h.review(c, h.uc.Reject, "Skill update rejected")
}

type reviewFunc func(ctx context.Context, updateID, reviewerID uuid.UUID, comments string) (skill.PendingUpdate, error)

func (h *SkillUpdateHandler) review(c fiber.Ctx, fn reviewFunc, msg string) error {
	reviewerID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req dto.ReviewSkillUpdateRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &req); err != nil {
			return err
		}
	}

	u, err := fn(c.Context(), id, reviewerID, req.Comments)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, msg, dto.NewSkillUpdateResponse(u))
}

func (h *SkillUpdateHandler) Delete(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), id); err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill update deleted", nil)
}
