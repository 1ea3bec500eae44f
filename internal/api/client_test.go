// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticTokens is a TokenSource with a fixed token.
type staticTokens string

func (s staticTokens) Token() (string, error) {
	if s == "" {
		return "", errors.New("no token")
	}
	return string(s), nil
}

func TestAuthorizationHeaderWithToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("abc"))
	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
}

func TestAuthorizationHeaderOmittedWithoutToken(t *testing.T) {
	var has bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens(""))
	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.False(t, has, "Authorization header must be omitted when no token is stored")
}

func TestLoginSkipsAuthAndSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("stale"))
	out, err := c.Login(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok123", out.AccessToken)
}

func TestValidationErrorUsesFixedDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","email"],"msg":"field required"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Me(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, ValidationFailedDetail, apiErr.Detail,
		"422 must always yield the fixed validation message regardless of body")
}

func TestErrorUsesServerDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"Acesso negado"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.MyFlow(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Acesso negado", apiErr.Detail)
}

func TestErrorGenericFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.MyFlow(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Error: 502", apiErr.Detail)
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Not authenticated"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateStepStatusSendsPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/onboarding/step/7/status", r.URL.Path)
		w.Write([]byte(`{"id":7,"is_completed":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("abc"))
	step, err := c.UpdateStepStatus(context.Background(), 7, true)
	require.NoError(t, err)
	assert.True(t, step.IsCompleted)
}

func TestNetworkErrorIsWrapped(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil) // nothing listens here
	_, err := c.MyFlow(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failure must not be an APIError")
}
