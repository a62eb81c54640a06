package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/worklog-labs/gitjournal-backend/internal/dto"
	"github.com/worklog-labs/gitjournal-backend/internal/github"
	"github.com/worklog-labs/gitjournal-backend/internal/summarizer"
)

// GitHubService backs the read-only GitHub endpoints: repository browsing,
// pull request detail and contributor listings.
type GitHubService struct {
	gh        *github.Client
	summaries *summarizer.Service
}

func NewGitHubService(gh *github.Client, summaries *summarizer.Service) *GitHubService {
	return &GitHubService{gh: gh, summaries: summaries}
}

func (s *GitHubService) UserDetails(ctx context.Context, token string) (*github.User, error) {
	return s.gh.CurrentUser(ctx, token)
}

func (s *GitHubService) UserEmails(ctx context.Context, token string) ([]github.Email, error) {
	return s.gh.UserEmails(ctx, token)
}

func (s *GitHubService) Repositories(ctx context.Context, token string, page, perPage int) ([]github.Repository, error) {
	return s.gh.Repositories(ctx, token, page, perPage)
}

func (s *GitHubService) PullRequests(ctx context.Context, token, owner, repo string, opts github.PullOptions) ([]github.PullRequest, error) {
	return s.gh.PullRequests(ctx, token, owner, repo, opts)
}

// PullRequestDetail combines the pull request, its changed files and, unless
// skipped, a generated prose summary of those files.
func (s *GitHubService) PullRequestDetail(ctx context.Context, token, owner, repo string, number int, skipSummary bool) (*dto.PullRequestDetailResponse, error) {
	pr, err := s.gh.PullRequest(ctx, token, owner, repo, number)
	if err != nil {
		return nil, err
	}
	files, err := s.gh.PullRequestFiles(ctx, token, owner, repo, number)
	if err != nil {
		return nil, err
	}

	detail := &dto.PullRequestDetailResponse{
		PullRequest: *pr,
		Files:       files,
	}
	if !skipSummary {
		detail.Summary = s.summaries.SummarizeFiles(ctx, changedFiles(files))
	}
	return detail, nil
}

// PullContributors intersects the repository's contributors with the authors
// of the pull request's commits, most active first.
func (s *GitHubService) PullContributors(ctx context.Context, token, owner, repo string, number, page, perPage int) (*dto.PullContributorsResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}

	contributors, total, err := s.gh.Contributors(ctx, token, owner, repo, page, perPage)
	if err != nil {
		return nil, err
	}
	commits, err := s.gh.PullRequestCommits(ctx, token, owner, repo, number)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]struct{})
	for _, c := range commits {
		if c.Author != nil && c.Author.Login != "" {
			authors[c.Author.Login] = struct{}{}
		}
	}

	filtered := make([]github.Contributor, 0, len(contributors))
	for _, c := range contributors {
		if _, ok := authors[c.Login]; ok {
			filtered = append(filtered, c)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Contributions > filtered[j].Contributions
	})

	return &dto.PullContributorsResponse{
		PullNumber:   number,
		Repository:   fmt.Sprintf("%s/%s", owner, repo),
		Contributors: filtered,
		Pagination: dto.Pagination{
			CurrentPage:       page,
			PerPage:           perPage,
			TotalContributors: total,
		},
	}, nil
}

func (s *GitHubService) RepositoryContributors(ctx context.Context, token, owner, repo string, page, perPage int) (*dto.ContributorsResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}

	contributors, total, err := s.gh.Contributors(ctx, token, owner, repo, page, perPage)
	if err != nil {
		return nil, err
	}

	return &dto.ContributorsResponse{
		Repository:   fmt.Sprintf("%s/%s", owner, repo),
		Contributors: contributors,
		Pagination: dto.Pagination{
			CurrentPage:       page,
			PerPage:           perPage,
			TotalContributors: total,
		},
	}, nil
}
