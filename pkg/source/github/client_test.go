package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autoclouddeploy/archmap/pkg/integrations"
	"github.com/autoclouddeploy/archmap/pkg/httputil"
)

func testClient(t *testing.T, serverURL, token string) *Client {
	t.Helper()
	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(cache, headers),
		baseURL: serverURL,
	}
}

func TestClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			http.NotFound(w, r)
			return
		}
		if q := r.URL.Query().Get("q"); q != "topic:terraform language:HCL" {
			t.Errorf("unexpected query %q", q)
		}

		// One page of results, then an empty page.
		if r.URL.Query().Get("page") != "1" {
			json.NewEncoder(w).Encode(searchResponse{})
			return
		}
		json.NewEncoder(w).Encode(searchResponse{
			TotalCount: 3,
			Items: []apiRepo{
				{FullName: "acme/vpc-module", Name: "vpc-module", CloneURL: "https://github.com/acme/vpc-module.git", Stars: 900},
				{FullName: "acme/eks-module", Name: "eks-module", CloneURL: "https://github.com/acme/eks-module.git", Stars: 450},
				{FullName: "beta/s3-module", Name: "s3-module", CloneURL: "https://github.com/beta/s3-module.git", Stars: 10},
			},
		})
	}))
	defer server.Close()

	c := testClient(t, server.URL, "")

	repos, err := c.Search(context.Background(), "topic:terraform language:HCL", 2)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("got %d repos, want 2 (limit)", len(repos))
	}
	if repos[0].FullName != "acme/vpc-module" || repos[1].FullName != "acme/eks-module" {
		t.Errorf("unexpected repos: %+v", repos)
	}
	if repos[0].CloneURL == "" {
		t.Error("clone URL should be populated")
	}
}

func TestClientReadme(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/vpc-module/readme" {
			http.NotFound(w, r)
			return
		}
		if accept := r.Header.Get("Accept"); accept != "application/vnd.github.v3.raw" {
			t.Errorf("Accept = %q, want raw media type", accept)
		}
		fmt.Fprint(w, "# VPC Module\n\nCreates a VPC.")
	}))
	defer server.Close()

	c := testClient(t, server.URL, "")

	readme, err := c.Readme(context.Background(), "acme", "vpc-module")
	if err != nil {
		t.Fatalf("Readme error: %v", err)
	}
	if readme != "# VPC Module\n\nCreates a VPC." {
		t.Errorf("unexpected readme: %q", readme)
	}
}

func TestClientInfoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(t, server.URL, "")

	_, err := c.Info(context.Background(), "ghost", "nope")
	if err == nil {
		t.Fatal("expected error for missing repo")
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("test-token", time.Hour)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
}

func TestValidateOwner(t *testing.T) {
	tests := []struct {
		owner   string
		wantErr bool
	}{
		{"octocat", false},
		{"my-org", false},
		{"a", false},
		{"", true},
		{"-starts-with-hyphen", true},
		{"has spaces", true},
	}
	for _, tt := range tests {
		err := ValidateOwner(tt.owner)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOwner(%q) err=%v, wantErr=%v", tt.owner, err, tt.wantErr)
		}
	}
}

func TestParseRepoRef(t *testing.T) {
	owner, repo, err := ParseRepoRef("acme/vpc-module")
	if err != nil {
		t.Fatalf("ParseRepoRef error: %v", err)
	}
	if owner != "acme" || repo != "vpc-module" {
		t.Errorf("got %s/%s, want acme/vpc-module", owner, repo)
	}

	if _, _, err := ParseRepoRef("no-slash"); err == nil {
		t.Error("expected error for ref without slash")
	}
	if _, _, err := ParseRepoRef("-bad/repo"); err == nil {
		t.Error("expected error for invalid owner")
	}
}
