package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"snaphunt/internal/config"
)

func newTestConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BlobDir = t.TempDir()
	cfg.BlobSecret = "test-secret"
	cfg.PhotoURLRetryDelayMillis = 1
	return cfg
}

func newServerForTest(t *testing.T) *Server {
	t.Helper()
	return New(nil, newTestConfig(t))
}

// setupActiveHunt creates a hunt on the built-in pack, joins the named
// players (first one is host), and starts it.
func setupActiveHunt(t *testing.T, srv *Server, names ...string) (*Hunt, []string) {
	t.Helper()
	hunt := srv.store.CreateHunt("downtown", ModeAnytime, 0)
	ids := make([]string, 0, len(names))
	for _, name := range names {
		_, member, err := srv.joinHunt(hunt.ID, "", name)
		if err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		ids = append(ids, member.PlayerID)
	}
	if _, err := srv.startHunt(hunt.ID, ids[0]); err != nil {
		t.Fatalf("start hunt: %v", err)
	}
	return hunt, ids
}

func submitPhoto(t *testing.T, srv *Server, huntID, playerID string, promptID uint, photo []byte) int {
	t.Helper()
	_, sub, err := srv.ensureSubmission(huntID, playerID, promptID)
	if err != nil {
		t.Fatalf("ensure submission: %v", err)
	}
	if _, err := srv.attachPhoto(huntID, sub.ID, photo); err != nil {
		t.Fatalf("attach photo: %v", err)
	}
	return sub.ID
}

func finishPlayers(t *testing.T, srv *Server, huntID string, playerIDs ...string) {
	t.Helper()
	for _, playerID := range playerIDs {
		now := timeNowUTC()
		if _, _, err := srv.markFinished(huntID, playerID, &now); err != nil {
			t.Fatalf("mark finished %s: %v", playerID, err)
		}
	}
}

func advanceToVoting(t *testing.T, srv *Server, huntID string, playerIDs ...string) {
	t.Helper()
	finishPlayers(t, srv, huntID, playerIDs...)
	hunt, advanced, err := srv.tryFinishHunt(huntID)
	if err != nil {
		t.Fatalf("try finish hunt: %v", err)
	}
	if !advanced || hunt.Status != StatusVoting {
		t.Fatalf("expected hunt in voting, got advanced=%v status=%s", advanced, hunt.Status)
	}
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload
}

func asInt(t *testing.T, value any) int {
	t.Helper()
	number, ok := value.(float64)
	if !ok {
		t.Fatalf("expected number, got %#v", value)
	}
	return int(number)
}

func asString(t *testing.T, value any) string {
	t.Helper()
	text, ok := value.(string)
	if !ok {
		t.Fatalf("expected string, got %#v", value)
	}
	return text
}
