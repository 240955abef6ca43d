package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"vitasurvey/internal/config"
	"vitasurvey/internal/service"
	"vitasurvey/internal/transport/rest/handler"
	"vitasurvey/internal/transport/rest/middleware"
	"vitasurvey/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	SurveyService *service.SurveyService
	WSHub         *ws.Hub
	CORS          config.CORSConfig
	Logger        *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))
	r.Use(middleware.RequestLogger(c.Logger))

	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/members", wsHandler.MemberWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Member routes (require member auth)
	memberRoutes := v1.NewRoute().Subrouter()
	memberRoutes.Use(authMW.RequireMember)

	memberRoutes.HandleFunc("/surveys/sessions", surveyHandler.Start).Methods("POST", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/sessions/{sessionId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/sessions/{sessionId}", surveyHandler.Abandon).Methods("DELETE", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/sessions/{sessionId}/answers/{questionId:[0-9]+}", surveyHandler.Answer).Methods("PUT", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/sessions/{sessionId}/answers/{questionId:[0-9]+}/toggle", surveyHandler.Toggle).Methods("POST", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/sessions/{sessionId}/next", surveyHandler.Next).Methods("POST", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/sessions/{sessionId}/prev", surveyHandler.Prev).Methods("POST", "OPTIONS")
	memberRoutes.HandleFunc("/surveys/submissions", surveyHandler.ListSubmissions).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
