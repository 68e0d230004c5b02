// ===============================
// FILE: internal/router/router.go
// ===============================

package router

import (
	"net/http"
	"strings"
	"time"

	"bookhub/internal/cache"
	"bookhub/internal/database"
	"bookhub/internal/handlers/api/v1/auth"
	"bookhub/internal/handlers/api/v1/books"
	"bookhub/internal/handlers/api/v1/comments"
	"bookhub/internal/handlers/api/v1/friends"
	"bookhub/internal/handlers/api/v1/messages"
	"bookhub/internal/handlers/api/v1/ratings"
	"bookhub/internal/handlers/api/v1/uploads"
	"bookhub/internal/handlers/api/v1/users"
	"bookhub/internal/handlers/ws"
	"bookhub/internal/middleware"
	"bookhub/internal/response"
	"bookhub/internal/services"
	"bookhub/internal/utils"

	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to wire the API
type Dependencies struct {
	Services        *services.ServiceCollection
	AuthMiddleware  *middleware.AuthMiddleware
	ResponseBuilder *response.Builder
	Hub             *ws.Hub
	Storage         utils.FileStorage
	DB              *database.Manager
	Cache           cache.Cache
	Logger          *zap.Logger
}

// New builds the full HTTP handler with all API v1 routes, the websocket
// endpoint and the health check wrapped in the shared middleware chain.
func New(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	addAPIv1Routes(mux, deps)
	addWebSocketRoute(mux, deps)
	addHealthRoute(mux, deps)

	handler := middleware.CORS(middleware.DefaultCORSConfig())(mux)
	handler = middleware.RequestLogger(deps.Logger)(handler)
	handler = response.Middleware(handler)
	return handler
}

func addAPIv1Routes(mux *http.ServeMux, deps *Dependencies) {
	authController := auth.NewAuthController(deps.Services, deps.Logger, deps.ResponseBuilder)
	userController := users.NewUserController(deps.Services, deps.Logger, deps.ResponseBuilder)
	bookController := books.NewBookController(deps.Services, deps.Logger, deps.ResponseBuilder)
	commentController := comments.NewCommentController(deps.Services, deps.Logger, deps.ResponseBuilder)
	ratingController := ratings.NewRatingController(deps.Services, deps.Logger, deps.ResponseBuilder)
	friendController := friends.NewFriendController(deps.Services, deps.Logger, deps.ResponseBuilder)
	messageController := messages.NewMessageController(deps.Services, deps.Logger, deps.ResponseBuilder)
	uploadController := uploads.NewUploadController(deps.Storage, deps.Logger, deps.ResponseBuilder)

	authMW := deps.AuthMiddleware
	rb := deps.ResponseBuilder

	// ===============================
	// AUTH ENDPOINTS
	// ===============================

	mux.Handle("/api/v1/auth/register", createAPIHandler(methodHandler(rb, http.MethodPost, authController.Register)))
	mux.Handle("/api/v1/auth/login", createAPIHandler(methodHandler(rb, http.MethodPost, authController.Login)))
	mux.Handle("/api/v1/auth/refresh", createAPIHandler(methodHandler(rb, http.MethodPost, authController.RefreshToken)))
	mux.Handle("/api/v1/auth/verify", createAPIHandler(methodHandler(rb, http.MethodGet, authController.VerifyToken)))
	mux.Handle("/api/v1/auth/email-action", createAPIHandler(methodHandler(rb, http.MethodPost, authController.EmailAction)))
	mux.Handle("/api/v1/auth/confirm-email", createAPIHandler(methodHandler(rb, http.MethodPost, authController.ConfirmEmail)))
	mux.Handle("/api/v1/auth/reset-password", createAPIHandler(methodHandler(rb, http.MethodPost, authController.ResetPassword)))
	mux.Handle("/api/v1/auth/logout", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodPost, authController.Logout), authMW))

	// ===============================
	// USER ENDPOINTS
	// ===============================

	mux.Handle("/api/v1/users/me", createAuthenticatedAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			userController.GetMe(w, r)
		case http.MethodPatch:
			userController.UpdateMe(w, r)
		case http.MethodDelete:
			userController.DeleteMe(w, r)
		default:
			writeMethodNotAllowed(rb, w, r, "GET, PATCH, DELETE")
		}
	}, authMW))

	mux.Handle("/api/v1/users/", createAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(rb, w, r, "GET")
			return
		}
		if strings.HasSuffix(r.URL.Path, "/books") {
			userController.GetUserBooks(w, r)
			return
		}
		userController.GetUser(w, r)
	}))

	// ===============================
	// BOOK ENDPOINTS
	// ===============================

	mux.Handle("/api/v1/books", createOptionalAuthAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bookController.ListPublicBooks(w, r)
		case http.MethodPost:
			bookController.CreateBook(w, r)
		default:
			writeMethodNotAllowed(rb, w, r, "GET, POST")
		}
	}, authMW))

	// Nested comment and rating routes live under /api/v1/books/{id}/...
	mux.Handle("/api/v1/books/", createOptionalAuthAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/comments"):
			switch r.Method {
			case http.MethodGet:
				commentController.ListComments(w, r)
			case http.MethodPost:
				commentController.CreateComment(w, r)
			default:
				writeMethodNotAllowed(rb, w, r, "GET, POST")
			}
		case strings.HasSuffix(r.URL.Path, "/review"):
			switch r.Method {
			case http.MethodGet:
				ratingController.GetSummary(w, r)
			case http.MethodPost:
				ratingController.RateBook(w, r)
			case http.MethodDelete:
				ratingController.RemoveRating(w, r)
			default:
				writeMethodNotAllowed(rb, w, r, "GET, POST, DELETE")
			}
		default:
			rb.WriteNotFound(r.Context(), w, "Resource not found")
		}
	}, authMW))

	mux.Handle("/api/v1/my-books", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodGet, bookController.ListMyBooks), authMW))

	mux.Handle("/api/v1/my-books/", createOptionalAuthAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bookController.GetBook(w, r)
		case http.MethodPatch:
			bookController.UpdateBook(w, r)
		case http.MethodDelete:
			bookController.DeleteBook(w, r)
		default:
			writeMethodNotAllowed(rb, w, r, "GET, PATCH, DELETE")
		}
	}, authMW))

	// ===============================
	// COMMENT ENDPOINTS
	// ===============================

	mux.Handle("/api/v1/comments/", createAuthenticatedAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			commentController.UpdateComment(w, r)
		case http.MethodDelete:
			commentController.DeleteComment(w, r)
		default:
			writeMethodNotAllowed(rb, w, r, "PATCH, DELETE")
		}
	}, authMW))

	// ===============================
	// FRIEND ENDPOINTS
	// ===============================

	mux.Handle("/api/v1/friend-requests", createAuthenticatedAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			friendController.SendRequest(w, r)
		case http.MethodGet:
			friendController.ListIncoming(w, r)
		default:
			writeMethodNotAllowed(rb, w, r, "GET, POST")
		}
	}, authMW))

	mux.Handle("/api/v1/friend-requests/", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodDelete, friendController.WithdrawRequest), authMW))
	mux.Handle("/api/v1/my-requests", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodGet, friendController.ListOutgoing), authMW))
	mux.Handle("/api/v1/request-action/", createAuthenticatedAPIHandler(friendController.HandleAction, authMW))
	mux.Handle("/api/v1/get-friends", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodGet, friendController.ListFriends), authMW))
	mux.Handle("/api/v1/delete-friend/", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodDelete, friendController.Unfriend), authMW))

	// ===============================
	// MESSAGE ENDPOINTS
	// ===============================

	mux.Handle("/api/v1/messages", createAuthenticatedAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			messageController.SendMessage(w, r)
		case http.MethodGet:
			messageController.ListMyMessages(w, r)
		default:
			writeMethodNotAllowed(rb, w, r, "GET, POST")
		}
	}, authMW))

	mux.Handle("/api/v1/messages/", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodGet, messageController.ListConversation), authMW))

	// ===============================
	// UPLOAD ENDPOINTS
	// ===============================

	mux.Handle("/api/v1/uploads", createAuthenticatedAPIHandler(methodHandler(rb, http.MethodPost, uploadController.Upload), authMW))
}

func addWebSocketRoute(mux *http.ServeMux, deps *Dependencies) {
	mux.Handle("/ws", deps.AuthMiddleware.RequireAuth()(http.HandlerFunc(deps.Hub.HandleConnection)))
}

func addHealthRoute(mux *http.ServeMux, deps *Dependencies) {
	mux.Handle("/health", createAPIHandler(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		dbStatus := deps.DB.Health(ctx)
		cacheErr := deps.Cache.Health(ctx)

		if !dbStatus.Healthy || cacheErr != nil {
			deps.ResponseBuilder.WriteError(ctx, w, services.NewServiceUnavailableError("Service degraded"))
			return
		}
		deps.ResponseBuilder.WriteSuccess(ctx, w, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"database":  dbStatus,
			"cache":     "ok",
		})
	}))
}

// ===============================
// HANDLER WRAPPERS
// ===============================

// createAPIHandler wraps a public API endpoint
func createAPIHandler(handlerFunc http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handlerFunc(w, r)
	})
}

// createAuthenticatedAPIHandler wraps an endpoint that requires a valid token
func createAuthenticatedAPIHandler(handlerFunc http.HandlerFunc, authMiddleware *middleware.AuthMiddleware) http.Handler {
	handler := createAPIHandler(handlerFunc)
	return authMiddleware.RequireAuth()(handler)
}

// createOptionalAuthAPIHandler wraps an endpoint that adapts to the caller:
// anonymous requests pass through, valid tokens attach an auth context.
func createOptionalAuthAPIHandler(handlerFunc http.HandlerFunc, authMiddleware *middleware.AuthMiddleware) http.Handler {
	handler := createAPIHandler(handlerFunc)
	return authMiddleware.OptionalAuth()(handler)
}

// methodHandler restricts an endpoint to a single HTTP method
func methodHandler(rb *response.Builder, method string, handlerFunc http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeMethodNotAllowed(rb, w, r, method)
			return
		}
		handlerFunc(w, r)
	}
}

func writeMethodNotAllowed(rb *response.Builder, w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	err := services.NewValidationError("Method not allowed", nil)
	err.StatusCode = http.StatusMethodNotAllowed
	rb.WriteError(r.Context(), w, err)
}
