package handler

import (
	"skill-staffing/internal/delivery/http/dto"
	"skill-staffing/internal/delivery/http/middleware"
	"skill-staffing/internal/domain/skill"
	"skill-staffing/internal/pkg/response"
	"skill-staffing/internal/usecase/directory"

	"github.com/gofiber/fiber/v3"
)

type SkillHandler struct {
	uc directory.Usecase
}

func NewSkillHandler(uc directory.Usecase) *SkillHandler {
	return &SkillHandler{uc: uc}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/users/:id/skills", h.ListByUser)
	r.Post("/me/skills", h.Create)

	grp := r.Group("/skills")
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
	grp.Post("/:id/endorsements", h.Endorse)
	grp.Get("/:id/endorsements", h.Endorsements)
	grp.Get("/:id/history", h.History)
}

func (h *SkillHandler) ListByUser(c fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.uc.ListByUser(c.Context(), userID)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillResponses(items))
}

func (h *SkillHandler) Create(c fiber.Ctx) error {
	userID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateSkillRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	level, _ := skill.ParseLevel(req.Level)

	created, err := h.uc.Create(c.Context(), directory.CreateInput{
		ActorID:       userID,
		OwnerID:       userID,
		Name:          req.Name,
		Category:      req.Category,
		Level:         level,
		Certification: req.Certification,
	})
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, "Skill created", dto.NewSkillResponse(created))
}

func (h *SkillHandler) Update(c fiber.Ctx) error {
	userID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateSkillRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	in := directory.UpdateInput{
		ActorID:       userID,
		SkillID:       id,
		Name:          req.Name,
		Category:      req.Category,
		Certification: req.Certification,
		Reason:        req.Reason,
	}
	if req.Level != nil {
		level, _ := skill.ParseLevel(*req.Level)
		in.Level = &level
	}

	updated, err := h.uc.Update(c.Context(), in)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill updated", dto.NewSkillResponse(updated))
}

func (h *SkillHandler) Delete(c fiber.Ctx) error {
	userID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill deleted", nil)
}

func (h *SkillHandler) Endorse(c fiber.Ctx) error {
	userID, _, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req dto.EndorseSkillRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &req); err != nil {
			return err
		}
	}

	e, err := h.uc.Endorse(c.Context(), id, userID, req.Comment)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Created(c, "Skill endorsed", dto.NewEndorsementResponse(e))
}

func (h *SkillHandler) Endorsements(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.uc.Endorsements(c.Context(), id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	out := make([]dto.EndorsementResponse, 0, len(items))
	for _, e := range items {
		out = append(out, dto.NewEndorsementResponse(e))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *SkillHandler) History(c fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.uc.History(c.Context(), id)
	if err != nil {
		return middleware.FromDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillHistoryResponses(items))
}
