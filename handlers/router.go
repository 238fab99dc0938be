package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LepeyevaEmiliya/projects/config"
	"github.com/LepeyevaEmiliya/projects/middleware"
	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

// Services bundles what the router needs to build its handlers.
type Services struct {
	Auth          *services.AuthService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Comments      *services.CommentService
	Notifications *services.NotificationService
	Activity      *services.ActivityService
	JWT           *utils.JWTManager
	DB            Pinger
}

// NewRouter registers every route and wraps the router in the global
// middleware chain.
func NewRouter(cfg config.Config, svc Services) http.Handler {
	dev := cfg.IsDevelopment()
	authHandler := NewAuthHandler(svc.Auth, dev)
	projectHandler := NewProjectHandler(svc.Projects, svc.Tasks, svc.Activity, dev)
	taskHandler := NewTaskHandler(svc.Tasks, svc.Comments, dev)
	notificationHandler := NewNotificationHandler(svc.Notifications, dev)
	healthHandler := NewHealthHandler(svc.DB, cfg.APIVersion, cfg.Env)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/", healthHandler.Root).Methods("GET")
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	api := r.PathPrefix(cfg.APIPrefix()).Subrouter()
	if cfg.RateLimit.MaxRequests > 0 {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests).Middleware)
	}
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.JWTAuthMiddleware(svc.JWT))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods("PATCH")
	protected.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods("POST")

	protected.HandleFunc("/projects", projectHandler.List).Methods("GET")
	protected.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	protected.HandleFunc("/projects/{id}", projectHandler.Get).Methods("GET")
	protected.HandleFunc("/projects/{id}", projectHandler.Update).Methods("PATCH")
	protected.HandleFunc("/projects/{id}/members", projectHandler.ListMembers).Methods("GET")
	protected.HandleFunc("/projects/{id}/members", projectHandler.AddMember).Methods("POST")
	protected.HandleFunc("/projects/{id}/accept", projectHandler.AcceptInvitation).Methods("POST")
	protected.HandleFunc("/projects/{id}/tasks", projectHandler.ListTasks).Methods("GET")
	protected.HandleFunc("/projects/{id}/activity", projectHandler.Activity).Methods("GET")

	// my-tasks must be registered before /tasks/{id}
	protected.HandleFunc("/tasks/my-tasks", taskHandler.MyTasks).Methods("GET")
	protected.HandleFunc("/tasks", taskHandler.List).Methods("GET")
	protected.HandleFunc("/tasks", taskHandler.Create).Methods("POST")
	protected.HandleFunc("/tasks/{id}", taskHandler.Get).Methods("GET")
	protected.HandleFunc("/tasks/{id}", taskHandler.Update).Methods("PATCH")
	protected.HandleFunc("/tasks/{id}", taskHandler.Delete).Methods("DELETE")
	protected.HandleFunc("/tasks/{id}/status", taskHandler.ChangeStatus).Methods("PATCH")
	protected.HandleFunc("/tasks/{id}/comments", taskHandler.ListComments).Methods("GET")
	protected.HandleFunc("/tasks/{id}/comments", taskHandler.AddComment).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	protected.HandleFunc("/notifications/mark-all-read", notificationHandler.MarkAllRead).Methods("PATCH")
	protected.HandleFunc("/notifications/{id}", notificationHandler.MarkRead).Methods("PATCH")
	protected.HandleFunc("/notifications/{id}", notificationHandler.Delete).Methods("DELETE")

	var h http.Handler = r
	h = middleware.CORS(cfg.CORSOrigins())(h)
	h = middleware.SecurityHeaders(!dev)(h)
	h = middleware.Recovery(dev)(h)
	h = middleware.RequestLogger(h)
	return h
}
