package handler

import (
	"strings"
	"time"

	"skill-staffing/internal/delivery/http/dto"
	"skill-staffing/internal/delivery/http/middleware"
	"skill-staffing/internal/domain"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/pkg/response"
	"skill-staffing/internal/usecase/staffing"

	"github.com/gofiber/fiber/v3"
)

type ResourceHandler struct {
	uc staffing.Usecase
}

func NewResourceHandler(uc staffing.Usecase) *ResourceHandler {
	return &ResourceHandler{uc: uc}
}

func (h *ResourceHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	managers := middleware.RequireRole(user.ReviewerRoles...)

	projects := r.Group("/projects/:projectId")
	projects.Post("/resources", managers, h.Assign)
	projects.Get("/resources", h.ListByProject)
	projects.Get("/resource-history", h.ProjectHistory)

	resources := r.Group("/resources")
	resources.Get("/:id", h.Get)
	resources.Patch("/:id", managers, h.Update)
	resources.Delete("/:id", managers, h.Remove)
	resources.Get("/:id/history", h.History)

	users := r.Group("/users/:id")
	users.Get("/allocation", h.Allocation)
	users.Get("/resources", h.ListByUser)
}

func (h *ResourceHandler) Assign(c fiber.Ctx) error {
	actorID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	projectID, err := paramUUID(c, "projectId")
	if err != nil {
		return err
	}

	var req dto.AssignResourceRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		return err
	}

	res, err := h.uc.Assign(c.Context(), staffing.AssignInput{
		ProjectID:   projectID,
		UserID:      *parseUUIDPtr(&req.UserID),
		Role:        req.Role,
		Allocation:  *req.Allocation,
		StartDate:   start,
		EndDate:     end,
		PerformedBy: actorID,
		Note:        req.Note,
	})
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, "Resource assigned", dto.NewResourceResponse(res))
}

func (h *ResourceHandler) Update(c fiber.Ctx) error {
	actorID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateResourceRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	in := staffing.UpdateInput{
		ResourceID:  id,
		Role:        req.Role,
		Allocation:  req.Allocation,
		PerformedBy: actorID,
		Note:        req.Note,
	}
	if req.StartDate != nil || req.EndDate != nil {
		start, err := parseDatePtr(req.StartDate)
		if err != nil {
			return err
		}
		end, err := parseDatePtr(req.EndDate)
		if err != nil {
			return err
		}
		// An empty string opens that side of the range.
		in.Dates = &staffing.DateRange{
			Start:     start,
			End:       end,
			OpenStart: req.StartDate != nil && start == nil,
			OpenEnd:   req.EndDate != nil && end == nil,
		}
	}

	res, err := h.uc.Update(c.Context(), in)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, "Resource updated", dto.NewResourceResponse(res))
}

func (h *ResourceHandler) Remove(c fiber.Ctx) error {
	actorID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Remove(c.Context(), id, actorID, c.Query("note")); err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, "Resource removed", nil)
}

func (h *ResourceHandler) Get(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewResourceResponse(res))
}

func (h *ResourceHandler) ListByProject(c fiber.Ctx) error {
	projectID, err := paramUUID(c, "projectId")
	if err != nil {
		return err
	}
	items, err := h.uc.ListByProject(c.Context(), projectID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewResourceResponses(items))
}

func (h *ResourceHandler) ListByUser(c fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.uc.ListByUser(c.Context(), userID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewResourceResponses(items))
}

func (h *ResourceHandler) History(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.uc.History(c.Context(), id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewResourceHistoryResponses(items))
}

func (h *ResourceHandler) ProjectHistory(c fiber.Ctx) error {
	projectID, err := paramUUID(c, "projectId")
	if err != nil {
		return err
	}
	items, err := h.uc.ProjectHistory(c.Context(), projectID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewResourceHistoryResponses(items))
}

func (h *ResourceHandler) Allocation(c fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var asOf time.Time
	if raw := strings.TrimSpace(c.Query("as_of")); raw != "" {
		if asOf, err = domain.ParseDate(raw); err != nil {
			return middleware.FromDomainError(err)
		}
	}

	sum, err := h.uc.Allocation(c.Context(), userID, asOf)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AllocationResponse{
		UserID:      sum.UserID,
		AsOf:        sum.AsOf.Format(domain.DateLayout),
		Total:       sum.Total,
		Available:   sum.Available,
		Assignments: dto.NewResourceResponses(sum.Assignments),
	})
}
