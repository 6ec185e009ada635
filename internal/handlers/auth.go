package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/oauth2"

	"einnames/internal/config"
)

// AuthHandler handles OIDC authentication flows for editor operators.
type AuthHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	cfg          *config.Config
}

// NewAuthHandler creates a new auth handler with OIDC configuration.
func NewAuthHandler(ctx context.Context, cfg *config.Config) (*AuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	return &AuthHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		cfg:          cfg,
	}, nil
}

// Login initiates the OIDC login flow.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	state := generateState()

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	sess.Set("oauth_state", state)

	url := h.oauth2Config.AuthCodeURL(state)
	return c.Redirect().To(url)
}

// Callback handles the OIDC callback after authentication.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	// Verify state
	savedState := sess.Get("oauth_state")
	if savedState == nil || savedState.(string) != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	sess.Delete("oauth_state")

	// Exchange code for token
	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}

	// Extract and verify ID token
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}

	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	claimsMap := make(map[string]any)
	if err := idToken.Claims(&claimsMap); err != nil {
		return err
	}

	// Some OIDC providers only include minimal claims in the ID token,
	// so merge in the userinfo endpoint claims when available.
	userInfo, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(oauth2Token))
	if err == nil {
		var userInfoClaims map[string]any
		if err := userInfo.Claims(&userInfoClaims); err == nil {
			for k, v := range userInfoClaims {
				claimsMap[k] = v
			}
		}
	} else {
		log.Printf("Warning: Failed to fetch userinfo: %v", err)
	}

	sub, _ := claimsMap["sub"].(string)
	email, _ := claimsMap["email"].(string)
	name, _ := claimsMap["name"].(string)

	sess.Set("operator_sub", sub)
	sess.Set("operator_email", email)
	sess.Set("operator_name", name)

	return c.Redirect().To("/")
}

// Logout clears the operator session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess != nil {
		sess.Destroy()
	}
	return c.Redirect().To("/")
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
