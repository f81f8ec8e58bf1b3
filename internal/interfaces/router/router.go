package router

import (
	"errors"

	creditsvc "samudra-backend/internal/application/credits"
	"samudra-backend/internal/application/identity"
	mrvsvc "samudra-backend/internal/application/mrv"
	"samudra-backend/internal/application/notary"
	projectsvc "samudra-backend/internal/application/projects"
	"samudra-backend/internal/application/scoring"
	statsvc "samudra-backend/internal/application/stats"
	verificationsvc "samudra-backend/internal/application/verification"
	"samudra-backend/internal/config"
	"samudra-backend/internal/infrastructure/database"
	authhandler "samudra-backend/internal/interfaces/handlers/auth"
	credithandler "samudra-backend/internal/interfaces/handlers/credits"
	mlhandler "samudra-backend/internal/interfaces/handlers/ml"
	mrvhandler "samudra-backend/internal/interfaces/handlers/mrv"
	projecthandler "samudra-backend/internal/interfaces/handlers/projects"
	statshandler "samudra-backend/internal/interfaces/handlers/stats"
	"samudra-backend/internal/middleware"
	"samudra-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is everything New needs to wire the app. Tests construct this
// directly with an in-memory DB and deterministic fakes.
type Deps struct {
	DB          *gorm.DB
	Provider    identity.Provider
	Local       *identity.LocalProvider // nil when the hosted provider is active
	Notary      notary.Notary           // nil disables notarization
	Scorer      scoring.Scorer
	Verifier    scoring.ProjectVerifier
	NCCRDomains []string
}

// New builds the Fiber app with all middleware and routes.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	projectService := &projectsvc.Service{DB: deps.DB, Identity: deps.Provider, Notary: deps.Notary}
	mrvService := &mrvsvc.Service{DB: deps.DB, Scorer: deps.Scorer}
	verificationService := &verificationsvc.Service{DB: deps.DB, Notary: deps.Notary, Verifier: deps.Verifier}
	creditService := &creditsvc.Service{DB: deps.DB, Notary: deps.Notary}
	statService := &statsvc.Service{DB: deps.DB}

	authHandlers := &authhandler.Handlers{
		Provider:    deps.Provider,
		Local:       deps.Local,
		NCCRDomains: deps.NCCRDomains,
	}
	projectHandlers := &projecthandler.Handlers{Service: projectService}
	mrvHandlers := &mrvhandler.Handlers{Service: mrvService, Verification: verificationService}
	creditHandlers := &credithandler.Handlers{Service: creditService}
	mlHandlers := &mlhandler.Handlers{Service: verificationService}
	statsHandlers := &statshandler.Handlers{Service: statService}

	// Public routes
	app.Get("/health", statsHandlers.Health)
	app.Get("/public/stats", statsHandlers.PublicStats)
	app.Post("/signup", authHandlers.Signup)
	app.Post("/login", authHandlers.Login)
	app.Post("/check-nccr-eligibility", authHandlers.CheckNCCREligibility)

	auth := middleware.RequireAuth(deps.Provider)

	// Project registry (managers own creation/deletion; verifiers read all)
	projectGroup := app.Group("/projects", auth)
	projectGroup.Post("/", middleware.RequireRole(constants.RoleProjectManager), projectHandlers.Create)
	projectGroup.Get("/manager", middleware.RequireRole(constants.RoleProjectManager), projectHandlers.ListManager)
	projectGroup.Get("/all", middleware.RequireRole(constants.RoleNCCRVerifier), projectHandlers.ListAll)
	projectGroup.Delete("/:id", middleware.RequireRole(constants.RoleProjectManager), projectHandlers.Delete)

	// MRV intake + verification
	mrvGroup := app.Group("/mrv", auth)
	mrvGroup.Post("/upload", middleware.RequireRole(constants.RoleProjectManager), mrvHandlers.Upload)
	mrvGroup.Post("/", middleware.RequireRole(constants.RoleProjectManager), mrvHandlers.Submit)
	mrvGroup.Get("/pending", middleware.RequireRole(constants.RoleNCCRVerifier), mrvHandlers.ListPending)
	mrvGroup.Post("/:id/approve", middleware.RequireRole(constants.RoleNCCRVerifier), mrvHandlers.Approve)

	// On-demand ML project checks (verifier tooling)
	mlGroup := app.Group("/ml", auth, middleware.RequireRole(constants.RoleNCCRVerifier))
	mlGroup.Post("/verify-project", mlHandlers.VerifyProject)
	mlGroup.Get("/verification/:projectId", mlHandlers.GetVerification)

	// Credit marketplace
	creditGroup := app.Group("/credits", auth)
	creditGroup.Get("/available", middleware.RequireRole(constants.RoleBuyer), creditHandlers.ListAvailable)
	creditGroup.Post("/purchase", middleware.RequireRole(constants.RoleBuyer), creditHandlers.Purchase)
	creditGroup.Post("/retire", middleware.RequireRole(constants.RoleBuyer), creditHandlers.Retire)
	creditGroup.Get("/retirements", middleware.RequireRole(constants.RoleBuyer), creditHandlers.ListRetirements)

	return app
}

// CreateApp assembles production dependencies from config and returns the
// wired app plus the opened connections for startup checks.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, errors.New("DATABASE_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	var provider identity.Provider
	var local *identity.LocalProvider
	if cfg.SupabaseURL != "" {
		provider = &identity.SupabaseProvider{
			BaseURL:   cfg.SupabaseURL,
			SecretKey: cfg.SupabaseSecretKey,
		}
	} else {
		local = identity.NewLocalProvider(db)
		provider = local
	}
	if rdb != nil {
		provider = &identity.CachingProvider{Next: provider, Rdb: rdb}
	}

	var chain notary.Notary
	if cfg.NotaryEnabled {
		chain = notary.NewAvalancheNotary(cfg.AvalancheRPCURL)
	}

	scorer := scoring.NewSimulatedScorer(0)
	app := New(Deps{
		DB:          db,
		Provider:    provider,
		Local:       local,
		Notary:      chain,
		Scorer:      scorer,
		Verifier:    scorer,
		NCCRDomains: cfg.NCCRDomains,
	})
	return app, db, rdb, nil
}
