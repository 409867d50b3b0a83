package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"backend-ecomap/internal/announce"
	"backend-ecomap/internal/auth"
	"backend-ecomap/internal/catalog"
	"backend-ecomap/internal/config"
	"backend-ecomap/internal/db"
	"backend-ecomap/internal/geolocation"
	"backend-ecomap/internal/mapsession"
	"backend-ecomap/internal/review"
	"backend-ecomap/internal/stream"
	"backend-ecomap/internal/trip"
)

const sweepInterval = time.Minute

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Catalog  *catalog.CachedClient
	Sessions *mapsession.Manager
}

func NewServer(cfg config.Config, pool *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	// a nil pool must stay a nil interface so the stores report unavailable
	var querier db.Querier
	if pool != nil {
		querier = pool
	}

	store := catalog.NewStore(querier)
	hub := stream.NewHub(redisClient)
	trips := trip.NewService(querier)
	cached := catalog.NewCachedClient(store, redisClient, cfg.CatalogCacheTTL())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      pool,
		Redis:   redisClient,
		Stream:  hub,
		Catalog: cached,
		Sessions: mapsession.NewManager(cached, mapsession.Options{
			Debounce:      cfg.SearchDebounceDuration(),
			SearchTimeout: cfg.SearchTimeoutDuration(),
			Geolocation: geolocation.Options{
				Timeout:      cfg.GeolocationTimeout(),
				MaximumAge:   cfg.GeolocationMaxAge(),
				HighAccuracy: true,
			},
			Publisher:   hub,
			Sink:        announce.LogSink{Prefix: "map "},
			Table:       trip.Places,
			Itineraries: trips,
			IdleTimeout: cfg.SessionIdleTimeout(),
		}),
	}

	registerRoutes(s, store, trips, review.NewService(querier, cached))
	return s
}

func registerRoutes(s *Server, store *catalog.Store, trips *trip.Service, reviews *review.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "sessions": s.Sessions.Len()})
	})

	authSvc := auth.NewService(s.Cfg.JWTSecret)
	jwtMiddleware := auth.JWTMiddleware(authSvc)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	locations := s.App.Group("/locations")
	catalog.RegisterRoutes(locations, s.Catalog, store)
	review.RegisterRoutes(locations, reviews, jwtMiddleware)
	trip.RegisterRoutes(s.App.Group("/trips"), trips, jwtMiddleware)
	mapsession.RegisterRoutes(s.App.Group("/map"), s.Sessions, s.Stream, jwtMiddleware)
}

// StartSweeper closes idle map sessions until ctx ends.
func (s *Server) StartSweeper(ctx context.Context) {
	go s.Sessions.RunSweeper(ctx, sweepInterval)
}

// Close stops every map session and the stream subscription.
func (s *Server) Close() {
	s.Sessions.Shutdown()
	s.Stream.Close()
}
