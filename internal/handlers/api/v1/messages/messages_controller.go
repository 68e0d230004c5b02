// ===============================
// FILE: internal/handlers/api/v1/messages/messages_controller.go
// ===============================

package messages

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bookhub/internal/middleware"
	"bookhub/internal/response"
	"bookhub/internal/services"

	"go.uber.org/zap"
)

// MessageController handles direct message endpoints
type MessageController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewMessageController creates a new message controller
func NewMessageController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *MessageController {
	return &MessageController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// SendMessage handles POST /api/v1/messages
func (c *MessageController) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	var req services.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.SenderID = authCtx.UserID

	message, err := c.serviceCollection.Message.SendMessage(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}

	c.logger.Info("Message sent via API",
		zap.Int64("message_id", message.ID),
		zap.Int64("sender_id", message.SenderID),
		zap.Int64("receiver_id", message.ReceiverID),
	)
	c.responseBuilder.WriteCreated(ctx, w, message)
}

// ListMyMessages handles GET /api/v1/messages. Returns every message the
// caller sent or received, oldest first.
func (c *MessageController) ListMyMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	messages, err := c.serviceCollection.Message.ListMyMessages(ctx, authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, messages)
}

// ListConversation handles GET /api/v1/messages/{user_id}. Fetching a
// conversation marks the other side's messages as read.
func (c *MessageController) ListConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	otherID, err := extractUserID(r.URL.Path)
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid user ID")
		return
	}

	messages, svcErr := c.serviceCollection.Message.ListConversation(ctx, authCtx.UserID, otherID)
	if svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, messages)
}

// extractUserID parses /api/v1/messages/{user_id}
func extractUserID(path string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/api/v1/messages/")
	trimmed = strings.Trim(trimmed, "/")
	return strconv.ParseInt(trimmed, 10, 64)
}
