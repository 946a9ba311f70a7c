package api

import (
	"net/http"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/api/handler"
	customMiddleware "github.com/bhanu553/mindful-gen-z-chat-sub001/internal/api/middleware"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/config"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm/anthropic"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm/gemini"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm/ollama"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm/openai"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/mode"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/repository/postgres"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/repository/redis"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/security"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	transitionRepo := postgres.NewTransitionRepository(db)
	creditRepo := postgres.NewCreditRepository(db)
	renewalStore := postgres.NewRenewalStore(db)

	// Initialize rate limiter
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))
	}

	// Initialize the mode classifier
	var classifier mode.Classifier = mode.NewKeywordClassifier()
	if cfg.Chat.UseModelClassifier {
		log.Info().Msg("Using model-backed mode classifier")
		classifier = mode.NewModelClassifier(llmRouter)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	quotaService := service.NewQuotaService(messageRepo, userRepo, cfg.Chat.DailyMessageLimit)
	assembler := service.NewContextAssembler(messageRepo, cfg.Chat.HistoryWindow)
	chatService := service.NewChatService(
		sessionRepo,
		messageRepo,
		transitionRepo,
		classifier,
		assembler,
		quotaService,
		llmRouter,
		cfg.Chat.ReplyTemperature,
		cfg.Chat.ReplyMaxTokens,
	)
	renewalService := service.NewRenewalService(
		userRepo,
		sessionRepo,
		creditRepo,
		renewalStore,
		llmRouter,
		cfg.Chat.RenewalCooldown,
		cfg.Chat.ResumeWindow,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(chatService)
	chatHandler := handler.NewChatHandler(chatService)
	usageHandler := handler.NewUsageHandler(quotaService, renewalService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/auth/me", authHandler.Me)
			r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))

			// Session routes
			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Delete("/", sessionHandler.Delete)
					r.Get("/messages", sessionHandler.History)
					r.Post("/messages", chatHandler.SendMessage)
					r.Get("/transitions", sessionHandler.Transitions)
					r.Post("/complete", sessionHandler.Complete)
				})
			})

			// Quota and renewal routes
			r.Get("/usage/daily", usageHandler.DailyUsage)
			r.Get("/renewal", usageHandler.RenewalStatus)
			r.Post("/renewal", usageHandler.Renew)
			r.Post("/credits", usageHandler.GrantCredit)
		})
	})

	return r
}
