package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
	"github.com/worklog-labs/gitjournal-backend/internal/cryptox"
	"github.com/worklog-labs/gitjournal-backend/internal/github"
	"github.com/worklog-labs/gitjournal-backend/internal/models"
	"github.com/worklog-labs/gitjournal-backend/internal/store"
	"github.com/worklog-labs/gitjournal-backend/internal/summarizer"
)

const syncPageSize = 30

type SyncResult struct {
	Processed int
	Skipped   int
	Journaled int
}

// SyncService drives the discovery-and-summarization pipeline: scan a
// repository's pull requests page by page, summarize the new ones, and hand
// the caller's own PRs off to the work journal. Pages and PRs are processed
// strictly sequentially; GitHub pagination is stateful and the journal API
// documents no concurrency guarantees.
type SyncService struct {
	gh        *github.Client
	summaries *summarizer.Service
	journals  *JournalService
	users     store.UserStore
	pending   store.PendingSummaryStore
	cipher    *cryptox.Cipher
}

func NewSyncService(gh *github.Client, summaries *summarizer.Service, journals *JournalService, users store.UserStore, pending store.PendingSummaryStore, cipher *cryptox.Cipher) *SyncService {
	return &SyncService{
		gh:        gh,
		summaries: summaries,
		journals:  journals,
		users:     users,
		pending:   pending,
		cipher:    cipher,
	}
}

// SyncRepository walks every pull request of org/repo. Preconditions fail
// fast before any pagination: the encrypted email must decrypt to an
// existing user and must be among the GitHub account's verified emails.
func (s *SyncService) SyncRepository(ctx context.Context, githubToken, org, repo, encEmail, encPassword string) (*SyncResult, error) {
	email, err := s.cipher.Decrypt(encEmail)
	if err != nil {
		return nil, invalidCredentialBlob(err)
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindBadRequest, "Unable to find user")
		}
		return nil, err
	}

	current, err := s.gh.CurrentUser(ctx, githubToken)
	if err != nil {
		return nil, err
	}

	if err := s.journals.requireVerifiedGitHubEmail(ctx, githubToken, email); err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for page := 1; ; page++ {
		prs, err := s.gh.PullRequests(ctx, githubToken, org, repo, github.PullOptions{
			State:     "all",
			Sort:      "created",
			Direction: "desc",
			Page:      page,
			PerPage:   syncPageSize,
		})
		if err != nil {
			return nil, err
		}

		for _, pr := range prs {
			ref := PrRef(org, repo, pr.Number)

			// The hash key is the strongest dedup guarantee: it survives even
			// if the pending summary was separately deleted and recreated.
			if _, err := s.users.JournalFor(ctx, user.ID, HashPrRef(ref)); err == nil {
				result.Skipped++
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				slog.Error("journal map lookup failed", "pr", ref, "error", err)
				continue
			}

			// One bad PR must not abort the whole repository scan.
			if err := s.processPullRequest(ctx, githubToken, org, repo, pr, current, encEmail, encPassword, result); err != nil {
				slog.Error("failed to process pull request", "org", org, "repo", repo, "number", pr.Number, "error", err)
			}
		}

		if len(prs) < syncPageSize {
			break
		}
	}

	return result, nil
}

func (s *SyncService) processPullRequest(ctx context.Context, githubToken, org, repo string, pr github.PullRequest, current *github.User, encEmail, encPassword string, result *SyncResult) error {
	pend, err := s.pending.Find(ctx, org, repo, pr.Number)
	switch {
	case errors.Is(err, store.ErrNotFound):
		files, err := s.gh.PullRequestFiles(ctx, githubToken, org, repo, pr.Number)
		if err != nil {
			return err
		}

		summary := s.summaries.SummarizeFiles(ctx, changedFiles(files))
		pend = &models.PendingPrSummary{
			ID:                uuid.New(),
			Organization:      org,
			Repository:        repo,
			PullRequestNumber: pr.Number,
			PullRequestTitle:  pr.Title,
			GitHubUserID:      pr.User.ID,
			GitHubLogin:       pr.User.Login,
			Summary:           summary,
		}
		if err := s.pending.Create(ctx, pend); err != nil {
			return err
		}
		result.Processed++
	case err != nil:
		return err
	}

	if pr.User.ID != current.ID {
		return nil
	}

	ref := PrRef(org, repo, pr.Number)
	if _, err := s.journals.Create(ctx, githubToken, encEmail, encPassword, pend.PullRequestTitle, pend.Summary, ref); err != nil {
		// Keep the pending summary and leave the hash key unwritten so the
		// hand-off can be retried; a failed journal must never be silently
		// marked done.
		slog.Error("journal hand-off failed", "pr", ref, "error", err)
		return nil
	}
	result.Journaled++

	if err := s.pending.Delete(ctx, pend.ID); err != nil {
		slog.Error("failed to delete pending summary", "pr", ref, "error", err)
	}
	return nil
}

// FlushPending hands every stored pending summary authored by the caller's
// GitHub user off to the journal, independently of a repository scan.
func (s *SyncService) FlushPending(ctx context.Context, githubToken, encEmail, encPassword string) (*SyncResult, error) {
	email, err := s.cipher.Decrypt(encEmail)
	if err != nil {
		return nil, invalidCredentialBlob(err)
	}
	if _, err := s.users.ByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindBadRequest, "Unable to find user")
		}
		return nil, err
	}

	current, err := s.gh.CurrentUser(ctx, githubToken)
	if err != nil {
		return nil, err
	}

	pendings, err := s.pending.ListByAuthor(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for _, pend := range pendings {
		ref := PrRef(pend.Organization, pend.Repository, pend.PullRequestNumber)
		if _, err := s.journals.Create(ctx, githubToken, encEmail, encPassword, pend.PullRequestTitle, pend.Summary, ref); err != nil {
			slog.Error("journal hand-off failed", "pr", ref, "error", err)
			continue
		}
		result.Journaled++

		if err := s.pending.Delete(ctx, pend.ID); err != nil {
			slog.Error("failed to delete pending summary", "pr", ref, "error", err)
		}
	}
	return result, nil
}

// PendingStatus reports how many pending summaries exist for the caller's
// GitHub user.
func (s *SyncService) PendingStatus(ctx context.Context, githubToken string) (int64, bool, error) {
	current, err := s.gh.CurrentUser(ctx, githubToken)
	if err != nil {
		return 0, false, err
	}
	count, err := s.pending.CountByAuthor(ctx, current.ID)
	if err != nil {
		return 0, false, err
	}
	return count, count > 0, nil
}

func changedFiles(files []github.PullRequestFile) []summarizer.ChangedFile {
	out := make([]summarizer.ChangedFile, len(files))
	for i, f := range files {
		out[i] = summarizer.ChangedFile{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Changes:   f.Changes,
			Patch:     f.Patch,
		}
	}
	return out
}
