package app

import (
	"errors"

	"team_portal_service/internal/chat/domain"
	errprocess "team_portal_service/pkg/err"
	"team_portal_service/pkg/logger"
	"team_portal_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChatHandler serves the snapshot, send and moderation endpoints.
type ChatHandler struct {
	uc   *ChatUseCase
	bans *BanRegistry
}

// NewChatHandler create ChatHandler
func NewChatHandler(uc *ChatUseCase, bans *BanRegistry) *ChatHandler {
	return &ChatHandler{
		uc:   uc,
		bans: bans,
	}
}

// currentUser reads the identity the JWT middleware resolved.
func currentUser(c *fiber.Ctx) (domain.User, bool) {
	id, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok || id == "" {
		return domain.User{}, false
	}
	name, _ := c.Locals(middlewares.TokenUserName).(string)
	role, _ := c.Locals(middlewares.TokenRole).(string)
	return domain.User{ID: id, Name: name, Role: role}, true
}

// Snapshot serves the bounded initial chat state
// @Summary Chat snapshot
// @Description Recent history, room limits and the caller's ban status
// @Tags Chat
// @Produce json
// @Success 200 {object} domain.Snapshot "snapshot"
// @Failure 401 {object} string "missing identity"
// @Failure 500 {object} string "storage failure"
// @Router /api/chat/messages [get]
func (h *ChatHandler) Snapshot(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondUnauthenticated(c)
	}

	snap, err := h.uc.Snapshot(c.Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": snap})
}

// Send posts one message to the room
// @Summary Send chat message
// @Description Validates, persists and broadcasts one message
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body object true "message content"
// @Success 201 {object} domain.ChatMessage "stored message"
// @Failure 400 {object} string "empty or over-length content"
// @Failure 403 {object} string "caller is banned"
// @Failure 429 {object} string "rate limit exceeded"
// @Router /api/chat/messages [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondUnauthenticated(c)
	}

	type request struct {
		Content string `json:"content"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request"})
	}

	msg, err := h.uc.Send(c.Context(), user, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": msg})
}

// Ban bans a user from the room
// @Summary Ban user
// @Description Records a ban and pushes the change to open streams
// @Tags Moderation
// @Accept json
// @Produce json
// @Param userId path string true "target user id"
// @Param request body object false "ban reason"
// @Success 200 {object} string "banned"
// @Failure 403 {object} string "moderator role required"
// @Router /api/chat/bans/{userId} [post]
func (h *ChatHandler) Ban(c *fiber.Ctx) error {
	targetID := c.Params("userId")
	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "missing user id"})
	}

	type request struct {
		Reason string `json:"reason"`
	}
	var req request
	// Body is optional; a ban without a reason is still a ban.
	_ = c.BodyParser(&req)

	if err := h.bans.Ban(c.Context(), targetID, req.Reason); err != nil {
		return respondError(c, err)
	}

	logger.Log.Info("user banned from chat",
		zap.String("target_user_id", targetID),
		zap.String("reason", req.Reason),
	)

	if _, err := h.uc.Announce(c.Context(), "A participant was banned from chat."); err != nil {
		// The ban itself succeeded; the notice is best effort.
		logger.Log.Warn("ban notice not stored", zap.Error(err))
	}

	return c.JSON(fiber.Map{"success": true})
}

// Unban lifts a user's ban
// @Summary Unban user
// @Description Removes the ban record and pushes the change to open streams
// @Tags Moderation
// @Produce json
// @Param userId path string true "target user id"
// @Success 200 {object} string "unbanned"
// @Failure 403 {object} string "moderator role required"
// @Router /api/chat/bans/{userId} [delete]
func (h *ChatHandler) Unban(c *fiber.Ctx) error {
	targetID := c.Params("userId")
	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "missing user id"})
	}

	if err := h.bans.Unban(c.Context(), targetID); err != nil {
		return respondError(c, err)
	}

	logger.Log.Info("user unbanned from chat", zap.String("target_user_id", targetID))

	if _, err := h.uc.Announce(c.Context(), "A participant was unbanned from chat."); err != nil {
		logger.Log.Warn("unban notice not stored", zap.Error(err))
	}

	return c.JSON(fiber.Map{"success": true})
}

// BanStatus reports the current ban record for a user
// @Summary Ban status
// @Description Current ban record for the target user, null when not banned
// @Tags Moderation
// @Produce json
// @Param userId path string true "target user id"
// @Success 200 {object} domain.BanRecord "record or null"
// @Failure 403 {object} string "moderator role required"
// @Router /api/chat/bans/{userId} [get]
func (h *ChatHandler) BanStatus(c *fiber.Ctx) error {
	targetID := c.Params("userId")
	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "missing user id"})
	}

	rec, err := h.bans.IsBanned(c.Context(), targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": rec})
}

func respondUnauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "Missing identity",
	})
}

// respondError maps the error taxonomy onto HTTP statuses. Validation kinds
// carry render-ready text; storage failures stay opaque.
func respondError(c *fiber.Ctx, err error) error {
	var e *errprocess.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case errprocess.KindForbidden:
			msg := "You are banned from chat"
			if e.Reason != "" {
				msg += ": " + e.Reason
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": msg})
		case errprocess.KindRateLimited:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "error": e.Msg})
		case errprocess.KindInvalid:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": e.Msg})
		case errprocess.KindUnauthenticated:
			return respondUnauthenticated(c)
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "internal error"})
}
