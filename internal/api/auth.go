// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/patrimonial/patri-tui/internal/model"
)

// TokenResponse is returned by login and signup.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupRequest creates a new account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Login exchanges credentials for an access token. The backend expects
// OAuth2 password-flow form fields, so the email goes in "username".
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out TokenResponse
	if err := c.postForm(ctx, "/users/login", form, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and returns its access token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/users/signup", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.getJSON(ctx, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
