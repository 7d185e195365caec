package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dtroode/notes-server/internal/api/http/handler"
	"github.com/dtroode/notes-server/internal/api/http/middleware"
	"github.com/dtroode/notes-server/internal/api/http/response"
	"github.com/dtroode/notes-server/internal/config"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
)

const serviceName = "notes-server"

// Router wires handlers and middleware into an http.Handler.
type Router struct {
	authService    handler.AuthService
	noteService    handler.NoteService
	authenticator  middleware.Authenticator
	contextManager model.ContextManager
	httpConfig     config.HTTP
	cookieConfig   config.Cookie
	logger         *logger.Logger
}

func New(
	authService handler.AuthService,
	noteService handler.NoteService,
	authenticator middleware.Authenticator,
	contextManager model.ContextManager,
	httpConfig config.HTTP,
	cookieConfig config.Cookie,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		noteService:    noteService,
		authenticator:  authenticator,
		contextManager: contextManager,
		httpConfig:     httpConfig,
		cookieConfig:   cookieConfig,
		logger:         logger,
	}
}

// Register builds the routing tree. Handlers are traced through otelhttp, which
// uses whatever tracer provider is registered globally.
func (r *Router) Register() http.Handler {
	log := r.logger.With("component", "http")
	logging := middleware.NewLogging(log)
	recoverer := middleware.NewRecover(log)

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(logging.Handle)
	mux.Use(recoverer.Handle)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.httpConfig.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           int((5 * time.Minute).Seconds()),
	}))

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Fail(w, http.StatusNotFound, "Resource not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, "ok", nil)
	})

	mux.Route("/api/v1", func(api chi.Router) {
		api.Route("/users", func(users chi.Router) { r.registerUserRoutes(users, log) })
		api.Route("/notes", func(notes chi.Router) { r.registerNoteRoutes(notes, log) })
	})

	return otelhttp.NewHandler(mux, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

func (r *Router) registerUserRoutes(users chi.Router, log *logger.Logger) {
	h := handler.NewUser(r.authService, r.cookieConfig, log)

	users.Post("/signup", h.Signup)
	users.Post("/signin", h.Signin)
	users.Post("/signout", h.Signout)
}

func (r *Router) registerNoteRoutes(notes chi.Router, log *logger.Logger) {
	h := handler.NewNote(r.noteService, r.contextManager, log)
	auth := middleware.NewAuthenticate(r.authenticator, r.contextManager, r.cookieConfig.Name, log)

	notes.With(auth.Require(handler.OpAddNote)).Post("/addNote", h.Add)
	notes.With(auth.Require(handler.OpListNotes)).Get("/getNotes", h.List)
	notes.With(auth.Require(handler.OpGetNote)).Get("/getNote", h.Get)
	notes.With(auth.Require(handler.OpEditNote)).Put("/editNote", h.Edit)
	notes.With(auth.Require(handler.OpDeleteNote)).Delete("/deleteNote", h.Delete)
	notes.With(auth.Require(handler.OpDeleteMany)).Post("/deleteMultipleNotes", h.DeleteMany)
}
