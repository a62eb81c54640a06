package dto

import "github.com/google/uuid"

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

type DecryptCredentialsRequest struct {
	EncryptedEmail    string `json:"encrypted_email"`
	EncryptedPassword string `json:"encrypted_password"`
}

type DecryptedCredentialsResponse struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EncryptedCredentials carry the caller's journal credentials through the
// system as iv:ciphertext blobs. They are never persisted.
type EncryptedCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken          string                `json:"access_token"`
	RefreshToken         string                `json:"refresh_token"`
	User                 UserResponse          `json:"user"`
	EncryptedCredentials *EncryptedCredentials `json:"encrypted_credentials,omitempty"`
}

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
}

type TokenStatusResponse struct {
	Valid bool         `json:"valid"`
	User  UserResponse `json:"user"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
