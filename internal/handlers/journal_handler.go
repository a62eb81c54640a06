package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/worklog-labs/gitjournal-backend/internal/dto"
	"github.com/worklog-labs/gitjournal-backend/internal/middleware"
	"github.com/worklog-labs/gitjournal-backend/internal/services"
)

type JournalHandler struct {
	journalService *services.JournalService
}

func NewJournalHandler(journalService *services.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

func (h *JournalHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateJournalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Encrypted email and password are required")
	}

	journalID, err := h.journalService.Create(c.Context(), c.Get(githubTokenHeader),
		req.Email, req.Password, req.Title, req.Content, req.PrRef)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateJournalResponse{JournalID: journalID})
}

func (h *JournalHandler) ByPrRef(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, err)
	}

	prRef := c.Params("prRef")
	if prRef == "" {
		return badRequest(c, "PR reference is required")
	}

	journalID, found, err := h.journalService.JournalByPrRef(c.Context(), userID, prRef)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.JournalLookupResponse{Found: found, JournalID: journalID})
}
