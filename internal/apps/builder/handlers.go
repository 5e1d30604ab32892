package builder

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/httpx"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	projects    *ProjectService
	payments    *PaymentService
	escrow      *EscrowService
	connections *ConnectionService
	siteUpdates *SiteUpdateService
}

func NewHandler(projects *ProjectService, payments *PaymentService, escrow *EscrowService, connections *ConnectionService, siteUpdates *SiteUpdateService) *Handler {
	return &Handler{projects: projects, payments: payments, escrow: escrow, connections: connections, siteUpdates: siteUpdates}
}

// --- Escrow and payments ---

func (h *Handler) EscrowSummary(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	summaries, err := h.escrow.Summaries(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to compute escrow summary")
	}
	return c.JSON(EscrowSummaryResponse{Projects: summaries})
}

func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	payment, err := h.payments.PayMilestone(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to record payment")
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	projectID, err := httpx.QueryUUID(c, "project")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	payments, err := h.payments.ListPayments(c.UserContext(), userID, projectID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch payments")
	}
	return c.JSON(payments)
}

// --- Projects ---

func (h *Handler) CreateProject(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	project, err := h.projects.CreateProject(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create project")
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *Handler) ListProjects(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	limit, offset := httpx.Page(c)
	projects, total, err := h.projects.ListProjects(c.UserContext(), userID, c.Query("status"), limit, offset)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch projects")
	}
	return c.JSON(ProjectListResponse{Projects: projects, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetProject(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	project, err := h.projects.GetProject(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch project")
	}
	return c.JSON(project)
}

func (h *Handler) UpdateProject(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	project, err := h.projects.UpdateProject(c.UserContext(), userID, id, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update project")
	}
	return c.JSON(project)
}

func (h *Handler) DeleteProject(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.projects.DeleteProject(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete project")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ProjectConnections(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	conns, err := h.connections.ProjectConnections(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch connections")
	}
	return c.JSON(conns)
}

func (h *Handler) ProjectBids(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	bids, err := h.projects.ListProjectBids(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch bids")
	}
	return c.JSON(bids)
}

func (h *Handler) ReviewBid(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateBidStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	bid, err := h.projects.ReviewBid(c.UserContext(), userID, id, req.Status)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update bid")
	}
	return c.JSON(bid)
}

// --- Milestones ---

func (h *Handler) CreateMilestone(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	milestone, err := h.projects.CreateMilestone(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create milestone")
	}
	return c.Status(fiber.StatusCreated).JSON(milestone)
}

func (h *Handler) ListMilestones(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	projectID, err := httpx.QueryUUID(c, "project")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	milestones, err := h.projects.ListMilestones(c.UserContext(), userID, projectID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch milestones")
	}
	return c.JSON(milestones)
}

func (h *Handler) GetMilestone(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	milestone, err := h.projects.GetMilestone(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch milestone")
	}
	return c.JSON(milestone)
}

func (h *Handler) UpdateMilestone(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	milestone, err := h.projects.UpdateMilestone(c.UserContext(), userID, id, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update milestone")
	}
	return c.JSON(milestone)
}

func (h *Handler) DeleteMilestone(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.projects.DeleteMilestone(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete milestone")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Change orders ---

func (h *Handler) CreateChangeOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateChangeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	co, err := h.projects.CreateChangeOrder(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create change order")
	}
	return c.Status(fiber.StatusCreated).JSON(co)
}

func (h *Handler) ListChangeOrders(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	projectID, err := httpx.QueryUUID(c, "project")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	orders, err := h.projects.ListChangeOrders(c.UserContext(), userID, projectID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch change orders")
	}
	return c.JSON(orders)
}

func (h *Handler) UpdateChangeOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateChangeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	co, err := h.projects.UpdateChangeOrder(c.UserContext(), userID, id, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update change order")
	}
	return c.JSON(co)
}

func (h *Handler) DeleteChangeOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.projects.DeleteChangeOrder(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete change order")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Site updates ---

func (h *Handler) CreateSiteUpdate(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateSiteUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	update, err := h.siteUpdates.Create(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create site update")
	}
	return c.Status(fiber.StatusCreated).JSON(update)
}

func (h *Handler) ListSiteUpdates(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	projectID, err := httpx.QueryUUID(c, "project")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	updates, err := h.siteUpdates.List(c.UserContext(), userID, projectID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch site updates")
	}
	return c.JSON(updates)
}

func (h *Handler) GetSiteUpdate(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	update, err := h.siteUpdates.Get(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch site update")
	}
	return c.JSON(update)
}

func (h *Handler) UpdateSiteUpdate(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateSiteUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	update, err := h.siteUpdates.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update site update")
	}
	return c.JSON(update)
}

func (h *Handler) DeleteSiteUpdate(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.siteUpdates.Delete(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete site update")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) SiteUpdateImage(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	url, err := h.siteUpdates.ImageURL(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to prepare site update image")
	}
	return c.JSON(ImageResponse{ImageURL: url})
}

// --- Material orders ---

func (h *Handler) PlaceOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	order, err := h.projects.PlaceOrder(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to place order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *Handler) ListOrders(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	projectID, err := httpx.QueryUUID(c, "project")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	orders, err := h.projects.ListOrders(c.UserContext(), userID, projectID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch orders")
	}
	return c.JSON(orders)
}

func (h *Handler) CancelOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.projects.CancelOrder(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to cancel order")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Connections and ratings ---

func (h *Handler) Connections(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	conns, err := h.connections.Connections(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch connections")
	}
	return c.JSON(conns)
}

func (h *Handler) ContractorDirectory(c *fiber.Ctx) error {
	limit, offset := httpx.Page(c)
	contractors, err := h.connections.Directory(c.UserContext(), limit, offset)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch contractors")
	}
	return c.JSON(contractors)
}

func (h *Handler) RateContractor(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	rating, err := h.projects.RateContractor(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to save rating")
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}

func (h *Handler) ListRatings(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	ratings, err := h.projects.ListRatings(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch ratings")
	}
	return c.JSON(ratings)
}
