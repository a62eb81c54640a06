package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/worklog-labs/gitjournal-backend/internal/dto"
	"github.com/worklog-labs/gitjournal-backend/internal/github"
	"github.com/worklog-labs/gitjournal-backend/internal/services"
)

// githubTokenHeader carries the caller's GitHub access token; the
// Authorization header already holds the session JWT.
const githubTokenHeader = "X-GitHub-Token"

type GitHubHandler struct {
	githubService *services.GitHubService
	syncService   *services.SyncService
}

func NewGitHubHandler(githubService *services.GitHubService, syncService *services.SyncService) *GitHubHandler {
	return &GitHubHandler{githubService: githubService, syncService: syncService}
}

func (h *GitHubHandler) UserDetails(c *fiber.Ctx) error {
	user, err := h.githubService.UserDetails(c.Context(), c.Get(githubTokenHeader))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

func (h *GitHubHandler) UserEmails(c *fiber.Ctx) error {
	emails, err := h.githubService.UserEmails(c.Context(), c.Get(githubTokenHeader))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"emails": emails})
}

func (h *GitHubHandler) Repositories(c *fiber.Ctx) error {
	repos, err := h.githubService.Repositories(c.Context(), c.Get(githubTokenHeader),
		c.QueryInt("page", 1), c.QueryInt("per_page", 30))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(repos)
}

func (h *GitHubHandler) PullRequests(c *fiber.Ctx) error {
	prs, err := h.githubService.PullRequests(c.Context(), c.Get(githubTokenHeader),
		c.Params("owner"), c.Params("repo"), github.PullOptions{
			State:   c.Query("state", "all"),
			Page:    c.QueryInt("page", 1),
			PerPage: c.QueryInt("per_page", 30),
		})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(prs)
}

func (h *GitHubHandler) PullRequestDetail(c *fiber.Ctx) error {
	number, err := c.ParamsInt("number")
	if err != nil {
		return badRequest(c, "Invalid pull request number")
	}

	detail, err := h.githubService.PullRequestDetail(c.Context(), c.Get(githubTokenHeader),
		c.Params("owner"), c.Params("repo"), number, c.QueryBool("skip_summary", false))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(detail)
}

func (h *GitHubHandler) PullContributors(c *fiber.Ctx) error {
	number, err := c.ParamsInt("number")
	if err != nil {
		return badRequest(c, "Invalid pull request number")
	}

	resp, err := h.githubService.PullContributors(c.Context(), c.Get(githubTokenHeader),
		c.Params("owner"), c.Params("repo"), number,
		c.QueryInt("page", 1), c.QueryInt("per_page", 30))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *GitHubHandler) RepositoryContributors(c *fiber.Ctx) error {
	resp, err := h.githubService.RepositoryContributors(c.Context(), c.Get(githubTokenHeader),
		c.Params("owner"), c.Params("repo"),
		c.QueryInt("page", 1), c.QueryInt("per_page", 30))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// SyncRepository runs the full discovery-and-summarization pipeline for one
// repository.
func (h *GitHubHandler) SyncRepository(c *fiber.Ctx) error {
	var req dto.SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Encrypted email and password are required")
	}

	result, err := h.syncService.SyncRepository(c.Context(), c.Get(githubTokenHeader),
		c.Params("org"), c.Params("repo"), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SyncResponse{
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Journaled: result.Journaled,
	})
}

func (h *GitHubHandler) PendingSummaries(c *fiber.Ctx) error {
	count, found, err := h.syncService.PendingStatus(c.Context(), c.Get(githubTokenHeader))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SummariesStatusResponse{Summaries: count, Found: found})
}

// FlushPendingSummaries journals every stored pending summary authored by
// the caller's GitHub user.
func (h *GitHubHandler) FlushPendingSummaries(c *fiber.Ctx) error {
	var req dto.SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Encrypted email and password are required")
	}

	result, err := h.syncService.FlushPending(c.Context(), c.Get(githubTokenHeader), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SyncResponse{Journaled: result.Journaled})
}
