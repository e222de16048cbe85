package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	notificationController *controllers.NotificationController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.Create))
	mux.HandleFunc("GET /events", auth(eventController.List))
	mux.HandleFunc("GET /events/liked", auth(eventController.Liked))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.Get))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.Delete))

	// Membership and engagement
	mux.HandleFunc("POST /events/{eventID}/join", auth(eventController.Join))
	mux.HandleFunc("POST /events/{eventID}/leave", auth(eventController.Leave))
	mux.HandleFunc("POST /events/{eventID}/like", auth(eventController.Like))
	mux.HandleFunc("POST /events/{eventID}/unlike", auth(eventController.Unlike))
	mux.HandleFunc("POST /events/{eventID}/comments", auth(eventController.Comment))
	mux.HandleFunc("GET /events/{eventID}/comments", auth(eventController.Comments))
	mux.HandleFunc("GET /events/{eventID}/members", auth(eventController.Members))
	mux.HandleFunc("POST /events/{eventID}/members/export", auth(eventController.ExportMembers))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(notificationController.List))
	mux.HandleFunc("POST /notifications/{notificationID}/read", auth(notificationController.MarkRead))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
