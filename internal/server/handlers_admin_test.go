package server

import (
	"net/http"
	"testing"
)

func TestAdminWritesRequireDatabase(t *testing.T) {
	srv := newServerForTest(t)
	ts := newTestServer(t, srv.Handler())
	defer ts.Close()

	status, body := doRequest(t, ts, http.MethodPost, "/admin/api/packs", map[string]any{
		"slug": "harbor",
		"name": "Harbor Walk",
	})
	if status != http.StatusServiceUnavailable {
		t.Fatalf("create pack without db: status %d body %v", status, body)
	}
	status, body = doRequest(t, ts, http.MethodPost, "/admin/api/packs/downtown/prompts", map[string]any{
		"text": "A boat with a name pun",
	})
	if status != http.StatusServiceUnavailable {
		t.Fatalf("create prompt without db: status %d body %v", status, body)
	}
}

func TestAdminReadsServeMemoryCatalog(t *testing.T) {
	srv := newServerForTest(t)
	ts := newTestServer(t, srv.Handler())
	defer ts.Close()

	status, body := doRequest(t, ts, http.MethodGet, "/admin/api/packs", nil)
	if status != http.StatusOK {
		t.Fatalf("list packs: status %d body %v", status, body)
	}
	packs, ok := body["packs"].([]any)
	if !ok || len(packs) != 1 {
		t.Fatalf("expected the built-in pack, got %v", body["packs"])
	}

	status, body = doRequest(t, ts, http.MethodGet, "/admin/api/packs/downtown/prompts", nil)
	if status != http.StatusOK {
		t.Fatalf("list prompts: status %d body %v", status, body)
	}
	if prompts, ok := body["prompts"].([]any); !ok || len(prompts) != 8 {
		t.Fatalf("expected 8 prompts, got %v", body["prompts"])
	}
}
