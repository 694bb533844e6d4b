package chat

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/repositories"
)

// TokenExchange mints short-lived chat credentials from server-held secrets.
// The client never sees the secret; its contract is identity info in, opaque
// token out.
type TokenExchange struct {
	backend Backend
	bridge  *ChannelBridge
	ttl     time.Duration
	audit   repositories.CredentialRepository
	now     func() time.Time
}

// NewTokenExchange creates a token exchange. audit may be nil when no
// relational store is configured; issuance is then not recorded.
func NewTokenExchange(backend Backend, bridge *ChannelBridge, ttl time.Duration, audit repositories.CredentialRepository) *TokenExchange {
	return &TokenExchange{backend: backend, bridge: bridge, ttl: ttl, audit: audit, now: time.Now}
}

// Connect upserts the chat user record and mints a credential for it.
func (x *TokenExchange) Connect(ctx context.Context, req models.ConnectRequest) (string, error) {
	u := User{ID: req.UserID, Name: displayName(req.DisplayName, req.Username)}
	if err := x.backend.UpsertUsers(ctx, u); err != nil {
		return "", fmt.Errorf("upsert chat user %s: %w", req.UserID, err)
	}

	expiresAt := x.now().Add(x.ttl)
	token, err := x.backend.CreateToken(req.UserID, expiresAt)
	if err != nil {
		return "", fmt.Errorf("mint token for %s: %w", req.UserID, err)
	}

	x.record(req.UserID, "", expiresAt)
	return token, nil
}

// PrivateChat mints a credential and resolves the one-on-one channel between
// the caller and the recipient. Calling it twice for the same pair returns
// the same channel id without duplicating membership.
func (x *TokenExchange) PrivateChat(ctx context.Context, req models.PrivateChatRequest) (token, channelID string, err error) {
	caller := User{ID: req.UserID, Name: displayName(req.DisplayName, req.Username)}
	recipient := User{ID: req.RecipientID, Name: displayName(req.RecipientName, "")}

	expiresAt := x.now().Add(x.ttl)
	token, err = x.backend.CreateToken(req.UserID, expiresAt)
	if err != nil {
		return "", "", fmt.Errorf("mint token for %s: %w", req.UserID, err)
	}

	channelID, err = x.bridge.GetOrCreateDirect(ctx, caller, recipient)
	if err != nil {
		return "", "", err
	}

	x.record(req.UserID, channelID, expiresAt)
	return token, channelID, nil
}

// IssuedCredentials lists the audit records of credentials minted for a
// user, newest first. Empty when no audit store is configured.
func (x *TokenExchange) IssuedCredentials(userID string) ([]models.IssuedCredential, error) {
	if x.audit == nil {
		return []models.IssuedCredential{}, nil
	}
	return x.audit.ListByUserID(userID)
}

func (x *TokenExchange) record(userID, channelID string, expiresAt time.Time) {
	if x.audit == nil {
		return
	}
	err := x.audit.RecordIssued(&models.IssuedCredential{
		UserID:    userID,
		ChannelID: channelID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		log.Printf("record issued credential for %s: %v", userID, err)
	}
}

func displayName(display, username string) string {
	if display != "" {
		return display
	}
	if username != "" {
		return username
	}
	return "User"
}
