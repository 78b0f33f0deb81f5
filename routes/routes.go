package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/pedrowallacee/palpitarena-v2/handlers"
	"github.com/pedrowallacee/palpitarena-v2/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pedrowallacee/palpitarena-v2/docs" // swagger spec
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	championshipHandler *handlers.ChampionshipHandler,
	predictionHandler *handlers.PredictionHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Публичные маршруты
	router.Get("/championships/{championshipID}/standings", championshipHandler.GetStandings)
	router.Post("/predictions/copy-limit/check", predictionHandler.CheckCopyLimit)
	router.Get("/ws/championships/{championshipID}", webSocketHandler.ServeWs)

	// Маршруты, требующие токена
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(chiMiddleware.Timeout(60 * time.Second))

		r.Post("/rounds/{roundID}/recalculate", championshipHandler.RecalculateRound)
		r.Post("/rounds/{roundID}/predictions", predictionHandler.SubmitPredictions)

		r.Post("/championships/{championshipID}/groups/draw", championshipHandler.DrawGroups)
		r.Post("/championships/{championshipID}/groups/fixtures", championshipHandler.GenerateGroupFixtures)
		r.Post("/championships/{championshipID}/knockout/from-groups", championshipHandler.GenerateKnockoutFromGroups)
		r.Post("/championships/{championshipID}/knockout/direct", championshipHandler.DrawDirectKnockout)
		r.Post("/championships/{championshipID}/knockout/advance", championshipHandler.AdvanceKnockout)
		r.Post("/championships/{championshipID}/return-legs", championshipHandler.GenerateReturnLegs)
	})
}
