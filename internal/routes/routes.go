package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/worklog-labs/gitjournal-backend/internal/config"
	"github.com/worklog-labs/gitjournal-backend/internal/handlers"
	"github.com/worklog-labs/gitjournal-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	githubHandler *handlers.GitHubHandler,
	journalHandler *handlers.JournalHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public but gets a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/verify-token", authHandler.VerifyToken)

	// Protected auth routes (JWT required) - apply middleware per route
	// so the public auth group above stays public
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Post("/auth/decrypt-credentials", middleware.JWTProtected(cfg), authHandler.DecryptCredentials)

	// GitHub proxy and sync pipeline (JWT + X-GitHub-Token)
	gh := api.Group("/github", middleware.JWTProtected(cfg))
	gh.Get("/user", githubHandler.UserDetails)
	gh.Get("/user/emails", githubHandler.UserEmails)
	gh.Get("/repos", githubHandler.Repositories)
	gh.Get("/repos/:owner/:repo/pulls", githubHandler.PullRequests)
	gh.Get("/repos/:owner/:repo/pulls/:number", githubHandler.PullRequestDetail)
	gh.Get("/repos/:owner/:repo/pulls/:number/contributors", githubHandler.PullContributors)
	gh.Get("/repos/:owner/:repo/contributors", githubHandler.RepositoryContributors)
	gh.Post("/sync/:org/:repo", githubHandler.SyncRepository)
	gh.Get("/summaries", githubHandler.PendingSummaries)
	gh.Post("/summaries/flush", githubHandler.FlushPendingSummaries)

	// Journal hand-off (JWT required)
	journal := api.Group("/journal", middleware.JWTProtected(cfg))
	journal.Post("/", journalHandler.Create)
	journal.Get("/by-pr/:prRef", journalHandler.ByPrRef)
}
