package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
	"github.com/worklog-labs/gitjournal-backend/internal/cryptox"
	"github.com/worklog-labs/gitjournal-backend/internal/github"
	"github.com/worklog-labs/gitjournal-backend/internal/journal"
	"github.com/worklog-labs/gitjournal-backend/internal/store"
)

// PrRef formats the triple identifying a pull request across services.
func PrRef(org, repo string, number int) string {
	return fmt.Sprintf("%s_%s_%d", org, repo, number)
}

// HashPrRef derives the fixed-width map key under which a journal entry id
// is recorded for a PR ref.
func HashPrRef(prRef string) string {
	sum := sha256.Sum256([]byte(prRef))
	return hex.EncodeToString(sum[:])
}

type JournalService struct {
	gh     *github.Client
	client *journal.Client
	users  store.UserStore
	cipher *cryptox.Cipher
}

func NewJournalService(gh *github.Client, client *journal.Client, users store.UserStore, cipher *cryptox.Cipher) *JournalService {
	return &JournalService{gh: gh, client: client, users: users, cipher: cipher}
}

// Create performs the journal hand-off: decrypt the credentials just-in-time,
// re-verify the email against the caller's verified GitHub emails, deliver
// the entry and record the PR-ref hash key on the user. The plaintext
// credentials only ever exist on this call's stack.
func (s *JournalService) Create(ctx context.Context, githubToken, encEmail, encPassword, title, content, prRef string) (string, error) {
	email, err := s.cipher.Decrypt(encEmail)
	if err != nil {
		return "", invalidCredentialBlob(err)
	}
	password, err := s.cipher.Decrypt(encPassword)
	if err != nil {
		return "", invalidCredentialBlob(err)
	}

	if err := s.requireVerifiedGitHubEmail(ctx, githubToken, email); err != nil {
		return "", err
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.New(apperr.KindBadRequest, "Unable to find user")
		}
		return "", err
	}

	// The email just proved ownership through GitHub, so flip the soft
	// verification flag if it was still unset.
	if !user.IsVerified {
		if err := s.users.MarkVerified(ctx, user.ID); err != nil {
			slog.Error("failed to mark user verified", "user_id", user.ID.String(), "error", err)
		}
	}

	journalID, err := s.client.CreateEntry(ctx, email, password, title, content)
	if err != nil {
		return "", err
	}

	if prRef != "" {
		if err := s.users.RecordJournal(ctx, user.ID, HashPrRef(prRef), journalID); err != nil {
			// The entry exists externally but the dedup key write failed; a
			// retry may journal this PR twice. Surface the failure instead of
			// hiding the gap.
			return "", apperr.Wrap(apperr.KindInternal, "Journal entry created but mapping write failed", err)
		}
	}

	return journalID, nil
}

// JournalByPrRef reports whether a journal entry was already created for the
// given PR ref.
func (s *JournalService) JournalByPrRef(ctx context.Context, userID uuid.UUID, prRef string) (string, bool, error) {
	journalID, err := s.users.JournalFor(ctx, userID, HashPrRef(prRef))
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return journalID, true, nil
}

func (s *JournalService) requireVerifiedGitHubEmail(ctx context.Context, githubToken, email string) error {
	emails, err := s.gh.UserEmails(ctx, githubToken)
	if err != nil {
		return err
	}
	for _, e := range emails {
		if e.Verified && strings.EqualFold(e.Email, email) {
			return nil
		}
	}
	return apperr.New(apperr.KindBadRequest, "Email is not verified on GitHub. Please use a verified GitHub email.")
}

func invalidCredentialBlob(err error) error {
	if errors.Is(err, cryptox.ErrMalformedBlob) || errors.Is(err, cryptox.ErrDecryptionFailed) {
		return apperr.Wrap(apperr.KindBadRequest, "Invalid encrypted credentials", err)
	}
	return apperr.Wrap(apperr.KindInternal, "An error occurred while decrypting credentials", err)
}
