package contractor

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/httpx"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type ContractorHandler struct {
	service *ContractorService
}

func NewContractorHandler(service *ContractorService) *ContractorHandler {
	return &ContractorHandler{service: service}
}

func (h *ContractorHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	profile, err := h.service.GetProfile(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch profile")
	}
	return c.JSON(profile)
}

func (h *ContractorHandler) CreateProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	profile, err := h.service.CreateProfile(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create profile")
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *ContractorHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	profile, err := h.service.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update profile")
	}
	return c.JSON(profile)
}

func (h *ContractorHandler) OpenProjects(c *fiber.Ctx) error {
	limit, offset := httpx.Page(c)
	projects, total, err := h.service.OpenProjects(c.UserContext(), c.Query("location"), limit, offset)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch projects")
	}
	return c.JSON(OpenProjectsResponse{Projects: projects, Total: total, Limit: limit, Offset: offset})
}

func (h *ContractorHandler) ListBids(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	bids, err := h.service.ListBids(c.UserContext(), userID, c.Query("status"))
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch bids")
	}
	return c.JSON(bids)
}

func (h *ContractorHandler) GetBid(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	bid, err := h.service.GetBid(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch bid")
	}
	return c.JSON(bid)
}

func (h *ContractorHandler) CreateBid(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateBidRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	bid, err := h.service.CreateBid(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create bid")
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

func (h *ContractorHandler) UpdateBid(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateBidRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	bid, err := h.service.UpdateBid(c.UserContext(), userID, id, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update bid")
	}
	return c.JSON(bid)
}

func (h *ContractorHandler) DeleteBid(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.service.DeleteBid(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete bid")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ContractorHandler) ListWIPAA(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	projectID, err := httpx.QueryUUID(c, "project")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	records, err := h.service.ListWIPAA(c.UserContext(), userID, projectID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch WIPAA records")
	}
	return c.JSON(records)
}

func (h *ContractorHandler) GetWIPAA(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	record, err := h.service.GetWIPAA(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch WIPAA record")
	}
	return c.JSON(record)
}

func (h *ContractorHandler) CreateWIPAA(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateWIPAARequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	record, err := h.service.CreateWIPAA(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create WIPAA record")
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *ContractorHandler) UpdateWIPAA(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateWIPAARequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	record, err := h.service.UpdateWIPAA(c.UserContext(), userID, id, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update WIPAA record")
	}
	return c.JSON(record)
}

func (h *ContractorHandler) DeleteWIPAA(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.service.DeleteWIPAA(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete WIPAA record")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
