// ===============================
// FILE: internal/handlers/api/v1/friends/friends_controller.go
// ===============================

package friends

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

// FriendController handles friend request and friendship endpoints
type FriendController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewFriendController creates a new friend controller
func NewFriendController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *FriendController {
	return &FriendController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// SendRequest handles POST /api/v1/friend-requests
func (c *FriendController) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	var req services.SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request body format")
		return
	}
	req.FromUserID = authCtx.UserID

	request, err := c.serviceCollection.Friend.SendRequest(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}

	c.logger.Info("Friend request sent via API",
		zap.Int64("request_id", request.ID),
		zap.Int64("from_user", req.FromUserID),
		zap.Int64("to_user", req.ToUserID),
	)
	c.responseBuilder.WriteCreated(ctx, w, request)
}

// ListIncoming handles GET /api/v1/friend-requests. Returns pending
// requests addressed to the caller.
func (c *FriendController) ListIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	requests, err := c.serviceCollection.Friend.ListIncomingRequests(ctx, authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, requests)
}

// ListOutgoing handles GET /api/v1/my-requests. Returns pending requests
// the caller has sent.
func (c *FriendController) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	requests, err := c.serviceCollection.Friend.ListOutgoingRequests(ctx, authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, requests)
}

// WithdrawRequest handles DELETE /api/v1/friend-requests/{id}. Either the
// sender or the recipient can remove a pending request.
func (c *FriendController) WithdrawRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	requestID, err := extractTrailingID(r.URL.Path, "/api/v1/friend-requests/")
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request ID")
		return
	}

	if svcErr := c.serviceCollection.Friend.CancelRequest(ctx, requestID, authCtx.UserID); svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteNoContent(ctx, w)
}

// HandleAction handles POST and DELETE on /api/v1/request-action/{id}.
// POST with ?action=accept accepts a pending request addressed to the
// caller; DELETE declines it.
func (c *FriendController) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	requestID, err := extractTrailingID(r.URL.Path, "/api/v1/request-action/")
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid request ID")
		return
	}

	switch r.Method {
	case http.MethodPost:
		req := services.FriendRequestActionRequest{
			RequestID: requestID,
			UserID:    authCtx.UserID,
			Action:    r.URL.Query().Get("action"),
		}
		friend, svcErr := c.serviceCollection.Friend.AcceptRequest(ctx, &req)
		if svcErr != nil {
			c.responseBuilder.WriteError(ctx, w, svcErr)
			return
		}
		c.logger.Info("Friend request accepted via API",
			zap.Int64("request_id", requestID),
			zap.Int64("user_id", authCtx.UserID),
		)
		c.responseBuilder.WriteCreated(ctx, w, friend)

	case http.MethodDelete:
		if svcErr := c.serviceCollection.Friend.DeclineRequest(ctx, requestID, authCtx.UserID); svcErr != nil {
			c.responseBuilder.WriteError(ctx, w, svcErr)
			return
		}
		c.responseBuilder.WriteNoContent(ctx, w)

	default:
		w.Header().Set("Allow", "POST, DELETE")
		c.responseBuilder.WriteError(ctx, w, services.NewValidationError("Method not allowed", nil))
	}
}

// ListFriends handles GET /api/v1/get-friends
func (c *FriendController) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	friends, err := c.serviceCollection.Friend.ListFriends(ctx, authCtx.UserID)
	if err != nil {
		c.responseBuilder.WriteError(ctx, w, err)
		return
	}
	c.responseBuilder.WriteSuccess(ctx, w, friends)
}

// Unfriend handles DELETE /api/v1/delete-friend/{id}. Either side of a
// friendship can remove the edge.
func (c *FriendController) Unfriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	friendID, err := extractTrailingID(r.URL.Path, "/api/v1/delete-friend/")
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid friend ID")
		return
	}

	if svcErr := c.serviceCollection.Friend.Unfriend(ctx, friendID, authCtx.UserID); svcErr != nil {
		c.responseBuilder.WriteError(ctx, w, svcErr)
		return
	}
	c.responseBuilder.WriteNoContent(ctx, w)
}

// extractTrailingID parses the numeric segment after the given prefix
func extractTrailingID(path, prefix string) (int64, error) {
	trimmed := strings.TrimPrefix(path, prefix)
	trimmed = strings.Trim(trimmed, "/")
	return strconv.ParseInt(trimmed, 10, 64)
}
