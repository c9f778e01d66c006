package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hazyhaar/touchstone-names/pkg/kit"
	"github.com/hazyhaar/touchstone-names/pkg/names"
)

// NewRouter returns an http.Handler with all name API routes.
func NewRouter(h *names.Handle, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	hd := &handler{
		normalize: kit.Logging(logger, "normalize")(normalizeEndpoint(h)),
		variants:  kit.Logging(logger, "variants")(variantsEndpoint(h)),
		search:    kit.Logging(logger, "search")(searchEndpoint(h)),
		batch:     kit.Logging(logger, "batch")(batchEndpoint(h)),
		names:     h,
	}

	mux.HandleFunc("GET /v1/process/batch", methodNotAllowed) // prevent GET on batch
	mux.HandleFunc("POST /v1/process/batch", hd.handleBatch)
	mux.HandleFunc("GET /v1/normalize/{name}", hd.handleName("name", hd.normalize))
	mux.HandleFunc("GET /v1/variants/{name}", hd.handleName("name", hd.variants))
	mux.HandleFunc("GET /v1/search/{term}", hd.handleName("term", hd.search))
	mux.HandleFunc("GET /v1/health", hd.handleHealth)

	return cors(requestID(mux))
}

type handler struct {
	normalize kit.Endpoint
	variants  kit.Endpoint
	search    kit.Endpoint
	batch     kit.Endpoint
	names     *names.Handle
}

// --- single name ---

func (h *handler) handleName(param string, ep kit.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue(param)
		if name == "" {
			writeError(w, http.StatusBadRequest, "missing "+param)
			return
		}
		resp, err := ep(r.Context(), &nameReq{Name: name})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// --- batch ---

type httpBatchRequest struct {
	Names []string `json:"names"`
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req httpBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.batch(r.Context(), &batchReq{Names: req.Names})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status             string `json:"status"`
	ReplacementSources int    `json:"replacement_sources"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:             "ok",
		ReplacementSources: h.names.Get().ReplacementSources(),
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID tags each request with the client's X-Request-ID or a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithTransport(kit.WithRequestID(r.Context(), id), "http")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
