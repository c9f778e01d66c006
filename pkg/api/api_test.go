package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/touchstone-names/pkg/names"
	"github.com/hazyhaar/touchstone-names/pkg/rules"
)

const testRules = `normalization:
  - ":: NFD"
  - ":: [:Mn:] Remove"
  - ":: Lower"
  - ":: NFC"
transliteration:
  - ":: Latin-ASCII"
variants:
  - words:
      - Street -> st
`

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testHandle(t *testing.T) *names.Handle {
	t.Helper()
	cfg, err := rules.ParseConfig([]byte(testRules))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	l, err := rules.NewLoader(cfg)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	rs := names.RuleSetFromSource(l)
	p, err := names.NewProcessor(rs)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return names.NewHandle(p, rs)
}

func get(t *testing.T, h http.Handler, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if v != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec
}

func TestNormalizeRoute(t *testing.T) {
	router := NewRouter(testHandle(t), discard)
	var resp normalizeResponse
	rec := get(t, router, "/v1/normalize/%C3%89lys%C3%A9e%20Street", &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Normalized != "elysee street" || resp.Name != "Élysée Street" {
		t.Errorf("resp = %+v", resp)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestVariantsRoute(t *testing.T) {
	router := NewRouter(testHandle(t), discard)
	var resp variantsResponse
	get(t, router, "/v1/variants/Main%20Street", &resp)
	if want := []string{"main st", "main street"}; !reflect.DeepEqual(resp.Variants, want) {
		t.Errorf("variants = %q, want %q", resp.Variants, want)
	}
}

func TestSearchRoute(t *testing.T) {
	router := NewRouter(testHandle(t), discard)
	var resp searchResponse
	get(t, router, "/v1/search/CAF%C3%89", &resp)
	if resp.Normalized != "cafe" || resp.Term != "CAFÉ" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestBatchRoute(t *testing.T) {
	router := NewRouter(testHandle(t), discard)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/process/batch", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"names":["Main Street","Rue"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp batchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 || !reflect.DeepEqual(resp.Results[1].Variants, []string{"rue"}) {
		t.Errorf("results = %+v", resp.Results)
	}

	tooMany := make([]string, MaxBatch+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("n%d", i)
	}
	body, _ := json.Marshal(httpBatchRequest{Names: tooMany})
	for _, bad := range []string{`{"names":[]}`, `not json`, string(body)} {
		if rec := post(bad); rec.Code != http.StatusBadRequest {
			t.Errorf("body %.20q: status = %d, want 400", bad, rec.Code)
		}
	}

	if rec := get(t, router, "/v1/process/batch", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET batch status = %d", rec.Code)
	}
}

func TestHealthAndCORS(t *testing.T) {
	router := NewRouter(testHandle(t), discard)
	var resp healthResponse
	rec := get(t, router, "/v1/health", &resp)
	if resp.Status != "ok" || resp.ReplacementSources != 1 {
		t.Errorf("health = %+v", resp)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	opt := httptest.NewRecorder()
	router.ServeHTTP(opt, httptest.NewRequest(http.MethodOptions, "/v1/health", nil))
	if opt.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d", opt.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	router := NewRouter(testHandle(t), discard)
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestHandleSwapVisibleToRouter(t *testing.T) {
	h := testHandle(t)
	router := NewRouter(h, discard)

	plain, err := rules.NewLoader(&rules.Config{Normalization: []string{":: Lower"}})
	if err != nil {
		t.Fatal(err)
	}
	rs := names.RuleSetFromSource(plain)
	p, err := names.NewProcessor(rs)
	if err != nil {
		t.Fatal(err)
	}
	h.Swap(p, rs)

	var resp variantsResponse
	get(t, router, "/v1/variants/Main%20Street", &resp)
	if want := []string{"main street"}; !reflect.DeepEqual(resp.Variants, want) {
		t.Errorf("variants after swap = %q, want %q", resp.Variants, want)
	}
}

func TestMCPTools(t *testing.T) {
	srv := server.NewMCPServer("touchstone-names", "test", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, testHandle(t), discard)
	ctx := context.Background()

	call := func(msg string) string {
		t.Helper()
		out, err := json.Marshal(srv.HandleMessage(ctx, json.RawMessage(msg)))
		if err != nil {
			t.Fatalf("marshal response: %v", err)
		}
		return string(out)
	}

	list := call(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	for _, name := range []string{"normalize_name", "name_variants", "search_normalize"} {
		if !strings.Contains(list, name) {
			t.Errorf("tools/list lacks %s: %s", name, list)
		}
	}

	res := call(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"name_variants","arguments":{"name":"Main Street"}}}`)
	if !strings.Contains(res, "main st") {
		t.Errorf("name_variants result = %s", res)
	}

	res = call(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"search_normalize","arguments":{}}}`)
	if !strings.Contains(res, "term is required") {
		t.Errorf("missing argument result = %s", res)
	}
}

func TestMCPCallsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	srv := server.NewMCPServer("touchstone-names", "test", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, testHandle(t), logger)

	msg := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"normalize_name","arguments":{"name":"Rue"}}}`
	srv.HandleMessage(context.Background(), json.RawMessage(msg))

	out := buf.String()
	for _, want := range []string{`"action":"normalize"`, `"transport":"mcp"`, `"request_id":"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %s lacks %s", out, want)
		}
	}
}
