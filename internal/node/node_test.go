package node

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airlink-io/nodectl/internal/api"
	"github.com/airlink-io/nodectl/internal/config"
	"github.com/airlink-io/nodectl/internal/service"
	"github.com/airlink-io/nodectl/internal/session"
	"github.com/airlink-io/nodectl/pkg/options"
)

func newTestSession(t *testing.T, serverURL string) *session.Session {
	t.Helper()
	t.Setenv("NODECTL_HOME", t.TempDir())

	store, err := config.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.SaveTokens("alice", config.Tokens{Access: "test-token"}); err != nil {
		t.Fatalf("SaveTokens: %v", err)
	}

	opts := options.NewAPIOptions()
	opts.Endpoint = serverURL
	opts.Version = "v1"

	sess, err := session.New(store, opts)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return sess
}

func TestNodeRequiresSession(t *testing.T) {
	if _, err := New("N1", nil); err == nil {
		t.Error("New accepted a nil session")
	}
	sess := newTestSession(t, "http://127.0.0.1:0")
	if _, err := New("", sess); err == nil {
		t.Error("New accepted an empty node id")
	}
}

func TestNodeRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "test-token" {
			t.Errorf("Authorization = %q, want test-token", got)
		}

		switch r.URL.Path {
		case "/v1/user/nodes/config":
			if r.URL.Query().Get("node_id") != "N1" {
				t.Errorf("node_id = %q, want N1", r.URL.Query().Get("node_id"))
			}
			json.NewEncoder(w).Encode(service.NodeConfig{
				NodeID: "N1",
				Info:   service.Info{Name: "lamp", FWVersion: "1.2.0"},
				Services: []service.Entry{
					{Name: "ota", Type: service.OTAServiceType},
				},
			})
		case "/v1/user/nodes/params":
			switch r.Method {
			case http.MethodGet:
				json.NewEncoder(w).Encode(service.Params{"Light": map[string]any{"power": true}})
			case http.MethodPut:
				var body service.Params
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("bad set-params body: %v", err)
				}
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}
		case "/v1/user/nodes/ota/image":
			json.NewEncoder(w).Encode(service.UploadResult{Status: "success", ImageURL: "https://x/y"})
		case "/v1/user/nodes":
			json.NewEncoder(w).Encode(map[string][]string{"nodes": {"N1", "N2"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := newTestSession(t, srv.URL)
	n, err := New("N1", sess)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	cfg, err := n.Config(ctx)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.Info.Name != "lamp" || len(cfg.Services) != 1 {
		t.Errorf("Config = %+v", cfg)
	}

	params, err := n.Params(ctx)
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if _, ok := params["Light"]; !ok {
		t.Errorf("Params = %v, missing Light", params)
	}

	accepted, err := n.SetParams(ctx, service.Params{"Light": map[string]any{"power": false}})
	if err != nil || !accepted {
		t.Errorf("SetParams = (%v, %v), want accepted", accepted, err)
	}

	result, err := n.UploadFirmware(ctx, "fw", "cGF5bG9hZA==")
	if err != nil {
		t.Fatalf("UploadFirmware: %v", err)
	}
	if !result.Succeeded() || result.ImageURL != "https://x/y" {
		t.Errorf("UploadFirmware = %+v", result)
	}

	ids, err := List(ctx, sess)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("List = %v, want 2 nodes", ids)
	}
}

func TestNodeAPIErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"failure","description":"node not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	sess := newTestSession(t, srv.URL)
	n, err := New("unknown", sess)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = n.Config(context.Background())
	if err == nil {
		t.Fatal("Config succeeded against a 404")
	}
	if api.IsTransient(err) {
		t.Errorf("API rejection classified as transient: %v", err)
	}
}

func TestNodeConnectivityErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	sess := newTestSession(t, srv.URL)
	srv.Close() // connections now refused

	n, err := New("N1", sess)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = n.Config(context.Background())
	if err == nil {
		t.Fatal("Config succeeded against a closed server")
	}
	if !api.IsTransient(err) {
		t.Errorf("connectivity failure not classified as transient: %v", err)
	}
}
