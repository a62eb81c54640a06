package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
	"github.com/worklog-labs/gitjournal-backend/internal/cryptox"
	"github.com/worklog-labs/gitjournal-backend/internal/dto"
	"github.com/worklog-labs/gitjournal-backend/internal/models"
	"github.com/worklog-labs/gitjournal-backend/internal/store"
	"github.com/worklog-labs/gitjournal-backend/internal/token"
)

const demoEmailSuffix = "@example.com"

type AuthService struct {
	users     store.UserStore
	tokens    store.RefreshTokenStore
	issuer    *token.Issuer
	cipher    *cryptox.Cipher
	demoLogin bool
}

func NewAuthService(users store.UserStore, tokens store.RefreshTokenStore, issuer *token.Issuer, cipher *cryptox.Cipher, demoLogin bool) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		issuer:    issuer,
		cipher:    cipher,
		demoLogin: demoLogin,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest, ip string) (*dto.AuthResponse, error) {
	if req.Email == "" || len(req.Password) < 6 {
		return nil, apperr.New(apperr.KindBadRequest, "Email required and password must be at least 6 characters")
	}

	if _, err := s.users.ByEmail(ctx, req.Email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "Email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to hash password", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Email:    req.Email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.KindConflict, "Email already exists")
		}
		return nil, err
	}

	return s.issueSession(ctx, user, ip, "")
}

// Login authenticates against the stored bcrypt hash. When demo login is
// enabled, any @example.com address with a password of six or more
// characters is accepted and a user is created on first use.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.AuthResponse, error) {
	user, err := s.users.ByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if user != nil {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) == nil {
			return s.issueSession(ctx, user, ip, req.Password)
		}
	}

	if s.demoLogin && strings.HasSuffix(req.Email, demoEmailSuffix) && len(req.Password) >= 6 {
		if user == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, apperr.Wrap(apperr.KindInternal, "Failed to hash password", err)
			}
			user = &models.User{
				ID:       uuid.New(),
				Email:    req.Email,
				Password: string(hash),
			}
			if err := s.users.Create(ctx, user); err != nil {
				return nil, err
			}
		}
		return s.issueSession(ctx, user, ip, req.Password)
	}

	return nil, apperr.New(apperr.KindUnauthorized, "Invalid credentials")
}

// Refresh rotates the presented refresh token. Reuse of a revoked token is
// the core abuse signal: the conditional rotation fails closed and the event
// is logged.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest, ip string) (*dto.AuthResponse, error) {
	claims, err := s.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "User not found")
		}
		return nil, err
	}

	stored, err := s.tokens.FindActive(ctx, user.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("refresh token reuse or forgery detected", "user_id", user.ID.String(), "ip", ip)
			return nil, apperr.New(apperr.KindUnauthorized, "Invalid refresh token")
		}
		return nil, err
	}

	if time.Now().After(stored.ExpiresAt) {
		if err := s.tokens.Revoke(ctx, user.ID, req.RefreshToken, ip); err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to revoke expired refresh token", "user_id", user.ID.String(), "error", err)
		}
		return nil, apperr.New(apperr.KindUnauthorized, "Refresh token expired")
	}

	newRefresh, err := s.issuer.RefreshToken(user.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to issue refresh token", err)
	}
	next := s.newRefreshRecord(user.ID, newRefresh, ip)

	if err := s.tokens.RevokeAndReplace(ctx, user.ID, req.RefreshToken, ip, next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the race against a concurrent rotation of the same token.
			slog.Warn("concurrent refresh token rotation rejected", "user_id", user.ID.String(), "ip", ip)
			return nil, apperr.New(apperr.KindUnauthorized, "Invalid refresh token")
		}
		return nil, err
	}

	accessToken, err := s.issuer.AccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to issue access token", err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		User: dto.UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
	}, nil
}

// Logout revokes the presented refresh token. Unknown or already revoked
// tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest, ip string) error {
	claims, err := s.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, claims.UserID, req.RefreshToken, ip); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) VerifyToken(ctx context.Context, req *dto.VerifyTokenRequest) (*dto.TokenStatusResponse, error) {
	claims, err := s.issuer.VerifyAccess(req.Token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "Invalid or expired token")
	}

	return &dto.TokenStatusResponse{
		Valid: true,
		User: dto.UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
	}, nil
}

// DecryptCredentials recovers the plaintext credentials from their blobs.
// Untrusted ciphertext failures surface as BadRequest at this boundary.
func (s *AuthService) DecryptCredentials(req *dto.DecryptCredentialsRequest) (*dto.DecryptedCredentialsResponse, error) {
	if req.EncryptedEmail == "" || req.EncryptedPassword == "" {
		return nil, apperr.New(apperr.KindBadRequest, "Both encrypted email and encrypted password are required")
	}

	email, err := s.cipher.Decrypt(req.EncryptedEmail)
	if err != nil {
		return nil, decryptError(err)
	}
	password, err := s.cipher.Decrypt(req.EncryptedPassword)
	if err != nil {
		return nil, decryptError(err)
	}

	return &dto.DecryptedCredentialsResponse{Email: email, Password: password}, nil
}

func decryptError(err error) error {
	if errors.Is(err, cryptox.ErrMalformedBlob) || errors.Is(err, cryptox.ErrDecryptionFailed) {
		return apperr.Wrap(apperr.KindBadRequest, "Failed to decrypt credentials. The encrypted data may be invalid or corrupted.", err)
	}
	return apperr.Wrap(apperr.KindInternal, "An error occurred while decrypting credentials", err)
}

// issueSession mints the token pair and persists the refresh record. A
// non-empty plainPassword means this is a login: the response then carries
// the credentials encrypted for later journal hand-offs, since the plaintext
// password is never retained anywhere.
func (s *AuthService) issueSession(ctx context.Context, user *models.User, ip, plainPassword string) (*dto.AuthResponse, error) {
	accessToken, err := s.issuer.AccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to issue access token", err)
	}
	refreshToken, err := s.issuer.RefreshToken(user.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to issue refresh token", err)
	}

	if err := s.tokens.Save(ctx, s.newRefreshRecord(user.ID, refreshToken, ip)); err != nil {
		return nil, err
	}

	resp := &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
	}

	if plainPassword != "" {
		encEmail, err := s.cipher.Encrypt(user.Email)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "Failed to encrypt credentials", err)
		}
		encPassword, err := s.cipher.Encrypt(plainPassword)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "Failed to encrypt credentials", err)
		}
		resp.EncryptedCredentials = &dto.EncryptedCredentials{Email: encEmail, Password: encPassword}
	}

	return resp, nil
}

func (s *AuthService) newRefreshRecord(userID uuid.UUID, tokenString, ip string) *models.RefreshToken {
	now := time.Now()
	return &models.RefreshToken{
		ID:          uuid.New(),
		UserID:      userID,
		Token:       tokenString,
		ExpiresAt:   now.Add(s.issuer.RefreshTTL()),
		CreatedAt:   now,
		CreatedByIP: ip,
		IsActive:    true,
	}
}
