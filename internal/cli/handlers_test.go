// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
)

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()
	out, _ := io.ReadAll(r)
	return string(out)
}

func TestAdminListSendsStatusFilter(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rt := &Runtime{Client: api.NewClient(srv.URL, nil)}
	args := Args{ConfigVal: "pending", JSON: true}

	captureStdout(t, func() {
		if err := adminList(context.Background(), rt, args); err != nil {
			t.Errorf("adminList: %v", err)
		}
	})

	if got := query.Get("status"); got != "pending" {
		t.Errorf("status query = %q, want pending", got)
	}
	if got := query.Get("limit"); got != "50" {
		t.Errorf("limit query = %q, want 50", got)
	}
}

func TestStreamPrintsTokensAndProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(strings.Join([]string{
			`data: {"type":"message","content":"Anotado: "}`,
			`data: {"type":"message","content":"dois imóveis."}`,
			`data: {"type":"progress","data":{"completed_sections":2,"total_sections":5,"percentage":40}}`,
			`data: {"type":"complete"}`,
			"",
		}, "\n")))
	}))
	defer srv.Close()

	sess := &replSession{
		rt:   &Runtime{Client: api.NewClient(srv.URL, nil)},
		step: &model.UserOnboardingStep{StepID: 5},
	}

	out := captureStdout(t, func() {
		if err := sess.stream("tenho dois imóveis"); err != nil {
			t.Errorf("stream: %v", err)
		}
	})

	if !strings.Contains(out, "Anotado: dois imóveis.") {
		t.Errorf("reply tokens missing from output:\n%s", out)
	}
	if !strings.Contains(out, "2/5") {
		t.Errorf("progress line missing from output:\n%s", out)
	}
}
