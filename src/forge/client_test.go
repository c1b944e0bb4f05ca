package forge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-token", WithBaseURL(srv.URL))
}

func TestListDirKeepsAPIOrder(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/site/contents/src" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("expected ref=main, got %q", got)
		}
		json.NewEncoder(w).Encode([]Entry{
			{Name: "zeta.js", Path: "src/zeta.js", Type: "file", SHA: "z1"},
			{Name: "app", Path: "src/app", Type: "dir"},
			{Name: "alpha.js", Path: "src/alpha.js", Type: "file", SHA: "a1"},
		})
	}))

	entries, err := c.ListDir(context.Background(), RepoRef{"octo", "site"}, "main", "src")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	want := []string{"zeta.js", "app", "alpha.js"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("entry %d = %s, want %s (ordering must not be imposed)", i, entries[i].Name, name)
		}
	}
}

func TestFileContentDecodesBase64(t *testing.T) {
	text := "function main() {\n  return 42;\n}\n"
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(text)),
			"sha":      "abc123",
		})
	}))

	got, sha, err := c.FileContent(context.Background(), RepoRef{"octo", "site"}, "main", "src/main.js")
	if err != nil {
		t.Fatalf("FileContent: %v", err)
	}
	if got != text {
		t.Errorf("content = %q, want %q", got, text)
	}
	if sha != "abc123" {
		t.Errorf("sha = %q, want abc123", sha)
	}
}

func TestContentsPathEscapesSegments(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/site/contents/docs/read me#1.md" {
			t.Errorf("unexpected decoded path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte("x")),
			"sha":      "s1",
		})
	}))

	got, _, err := c.FileContent(context.Background(), RepoRef{"octo", "site"}, "", "docs/read me#1.md")
	if err != nil {
		t.Fatalf("FileContent: %v", err)
	}
	if got != "x" {
		t.Errorf("content = %q, want x", got)
	}
}

func TestUpdateFileReturnsNewToken(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["sha"] != "oldsha" {
			t.Errorf("sha = %q, want oldsha", body["sha"])
		}
		if body["branch"] != "main" {
			t.Errorf("branch = %q, want main", body["branch"])
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"content":{"sha":"newsha"}}`))
	}))

	sha, err := c.UpdateFile(context.Background(), RepoRef{"octo", "site"}, "main", "index.html", "edit", "<!DOCTYPE html>", "oldsha")
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if sha != "newsha" {
		t.Errorf("new sha = %q, want newsha", sha)
	}
}

func TestUpdateFileStaleTokenIsConflict(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"index.html does not match"}`))
	}))

	_, err := c.UpdateFile(context.Background(), RepoRef{"octo", "site"}, "main", "index.html", "edit", "x", "stale")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnprocessableEntity, ErrConflict},
		{http.StatusBadGateway, ErrServiceUnavailable},
	}
	for _, tt := range tests {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := c.CurrentUser(context.Background())
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New("t", WithBaseURL(url))
	_, err := c.Repositories(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestBranchesFlattenHeadSHA(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"main","commit":{"sha":"aaa"}},{"name":"dev","commit":{"sha":"bbb"}}]`))
	}))

	branches, err := c.Branches(context.Background(), RepoRef{"octo", "site"})
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if len(branches) != 2 || branches[0].SHA != "aaa" || branches[1].Name != "dev" {
		t.Fatalf("unexpected branches: %+v", branches)
	}
}

func TestCreateBranch(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["ref"] != "refs/heads/feature" {
			t.Errorf("ref = %q", body["ref"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ref":"refs/heads/feature","object":{"sha":"cafe"}}`))
	}))

	b, err := c.CreateBranch(context.Background(), RepoRef{"octo", "site"}, "feature", "cafe")
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if b.Name != "feature" || b.SHA != "cafe" {
		t.Fatalf("unexpected branch: %+v", b)
	}
}
