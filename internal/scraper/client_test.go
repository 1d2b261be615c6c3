package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tailorbase/internal/config"
	"tailorbase/internal/errors"
)

func testConfig(baseURL string) config.ScraperConfig {
	return config.ScraperConfig{
		BaseURL:        baseURL,
		ActorID:        "test-actor",
		Token:          "test-token",
		PollInterval:   5 * time.Millisecond,
		MaxWait:        time.Second,
		DatasetLimit:   10,
		PollRatePerSec: 1000,
	}
}

func testLogger(t *testing.T) *errors.Logger {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}
	return logger
}

func TestImportHappyPath(t *testing.T) {
	var polls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/acts/test-actor/runs"):
			if r.URL.Query().Get("token") != "test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			urls, _ := body["profileUrls"].([]any)
			if len(urls) != 1 {
				t.Errorf("expected one profile URL, got %v", body)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": Run{ID: "run-1", Status: runStatusReady},
			})

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/actor-runs/run-1"):
			status := runStatusRunning
			if polls.Add(1) >= 3 {
				status = runStatusSucceeded
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": Run{ID: "run-1", Status: status, DefaultDatasetID: "ds-1"},
			})

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/datasets/ds-1/items"):
			json.NewEncoder(w).Encode([]ProfileItem{{
				FullName: "Ada Example",
				Headline: "Platform Engineer",
				Skills:   []string{"Go", "Kubernetes"},
				Positions: []Position{{
					Title:       "Engineer",
					CompanyName: "Acme",
					StartDate:   "2021",
				}},
			}})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger(t))

	items, run, err := client.Import(context.Background(), "https://linkedin.com/in/ada")
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if run.Status != runStatusSucceeded {
		t.Errorf("run status = %q, want %q", run.Status, runStatusSucceeded)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].FullName != "Ada Example" {
		t.Errorf("item name = %q", items[0].FullName)
	}
	if polls.Load() < 3 {
		t.Errorf("expected at least 3 polls, got %d", polls.Load())
	}
}

func TestImportFailedRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{
				"data": Run{ID: "run-2", Status: runStatusReady},
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"data": Run{ID: "run-2", Status: runStatusFailed},
			})
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger(t))

	_, run, err := client.Import(context.Background(), "https://linkedin.com/in/ada")
	if err == nil {
		t.Fatal("expected error for failed run")
	}
	if run == nil || run.Status != runStatusFailed {
		t.Errorf("expected failed run state, got %+v", run)
	}
	if errors.ErrorCode(err) != errors.ErrCodeImportFailed {
		t.Errorf("error code = %q, want %q", errors.ErrorCode(err), errors.ErrCodeImportFailed)
	}
}

func TestImportRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{
				"data": Run{ID: "run-3", Status: runStatusReady},
			})
			return
		}
		// never finishes
		json.NewEncoder(w).Encode(map[string]any{
			"data": Run{ID: "run-3", Status: runStatusRunning},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := client.Import(ctx, "https://linkedin.com/in/ada")
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
}

func TestImportServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"actor not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), testLogger(t))

	_, _, err := client.Import(context.Background(), "https://linkedin.com/in/ada")
	if err == nil {
		t.Fatal("expected error from API failure")
	}
	if !strings.Contains(err.Error(), "404") && !strings.Contains(fmt.Sprint(err), "Failed to start") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProfileItemMapping(t *testing.T) {
	item := ProfileItem{
		FullName: "Ada Example",
		Headline: "Platform Engineer",
		Location: "Berlin",
		Summary:  "Builds infrastructure.",
		Skills:   []string{"Go", "Terraform"},
		Positions: []Position{
			{Title: "Engineer", CompanyName: "Acme", StartDate: "2021", Description: "Ran the platform"},
			{Title: "SRE", CompanyName: "Globex", StartDate: "2018", EndDate: "2021"},
		},
		Education: []Education{
			{SchoolName: "TU Berlin", Degree: "BSc", FieldOfStudy: "CS"},
		},
	}

	content := item.ToResumeContent()
	if content.FullName != "Ada Example" {
		t.Errorf("FullName = %q", content.FullName)
	}
	if len(content.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(content.Sections))
	}
	if content.Sections[0].Title != "Experience" || len(content.Sections[0].Items) != 2 {
		t.Errorf("experience section = %+v", content.Sections[0])
	}
	if content.Sections[1].Title != "Education" || len(content.Sections[1].Items) != 1 {
		t.Errorf("education section = %+v", content.Sections[1])
	}

	text := item.ToRawText()
	for _, want := range []string{"Ada Example", "Engineer, Acme (2021 - present)", "SRE, Globex (2018 - 2021)", "BSc, CS, TU Berlin", "Skills: Go, Terraform"} {
		if !strings.Contains(text, want) {
			t.Errorf("raw text missing %q:\n%s", want, text)
		}
	}
}
