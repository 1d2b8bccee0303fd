// Package server exposes the site, a small JSON API and operational
// endpoints over HTTP.
package server

import (
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/mithrel/sheetsite/internal/content"
	"github.com/mithrel/sheetsite/internal/keys"
	"github.com/mithrel/sheetsite/internal/metrics"
	"github.com/mithrel/sheetsite/internal/sheets"
	"github.com/mithrel/sheetsite/internal/site"
	"github.com/mithrel/sheetsite/pkg/api"
)

// Server wires the site and API handlers.
type Server struct {
	cfg     *viper.Viper
	content *content.Service
	site    *site.Site
	log     *zap.Logger

	// Secrets resolves auth.token values of the form "keyring:<name>".
	Secrets keys.SecretStore
}

func New(cfg *viper.Viper, svc *content.Service, st *site.Site, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, content: svc, site: st, log: log.Named("http"), Secrets: &keys.KeyringStore{}}
}

// Router returns an http.Handler with registered routes and middleware.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /index.html", s.handlePage)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(site.Static())))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/products", s.handleProducts)
	mux.HandleFunc("GET /api/products/{code}", s.handleProduct)
	mux.HandleFunc("GET /api/sheets/{name}", s.handleSheet)
	mux.HandleFunc("POST /admin/refresh", s.auth(s.handleRefresh))

	var h http.Handler = mux
	h = s.recoverer(h)
	h = s.observe(h)
	h = requestID(h)
	return h
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, err := keys.Resolve(s.Secrets, s.cfg.GetString("auth.token"))
		if err != nil {
			s.log.Warn("admin token unavailable", zap.Error(err))
			tok = ""
		}
		if tok == "" || !bearerMatches(r.Header.Get("Authorization"), tok) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerMatches(header, tok string) bool {
	got, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(tok)) == 1
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	req := s.site.ParseRequest(r)
	res, err := s.site.Render(r.Context(), req)
	if err != nil {
		s.log.Error("render failed", zap.String("page", req.Page), zap.Error(err), zap.String("request_id", RequestIDFrom(r.Context())))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if req.LangExplicit {
		http.SetCookie(w, &http.Cookie{
			Name:     site.LangCookie,
			Value:    string(req.Lang),
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", "Cookie")
	if res.Status == http.StatusOK {
		etag := etagOf(res.Body)
		w.Header().Set("ETag", etag)
		if match(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}

// etagOf is a strong validator over the rendered bytes.
func etagOf(b []byte) string {
	sum := blake3.Sum256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func match(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" || strings.TrimPrefix(part, "W/") == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lang, _ := api.ParseLang(q.Get("lang"))
	var (
		ps  []api.Product
		err error
	)
	switch {
	case strings.TrimSpace(q.Get("q")) != "":
		ps, err = s.content.Search(r.Context(), q.Get("q"), lang, s.cfg.GetInt("search.limit"))
	case strings.TrimSpace(q.Get("category")) != "":
		ps, err = s.content.Category(r.Context(), q.Get("category"))
	default:
		ps, err = s.content.Products(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ps == nil {
		ps = []api.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.content.Product(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.content.IsTab(name) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown sheet"})
		return
	}
	sh, err := s.content.Sheet(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

type refreshResult struct {
	OK          bool     `json:"ok"`
	Invalidated int      `json:"invalidated,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// handleRefresh reloads everything, or with ?lang= only drops that
// language's cached menu titles.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("lang"); raw != "" {
		lang, ok := api.ParseLang(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "lang must be zh or en"})
			return
		}
		n := s.content.InvalidateLanguage(lang)
		s.log.Info("language cache invalidated", zap.String("lang", string(lang)), zap.Int("entries", n))
		writeJSON(w, http.StatusOK, refreshResult{OK: true, Invalidated: n})
		return
	}
	err := s.content.Refresh(r.Context())
	res := refreshResult{OK: err == nil}
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			res.Errors = append(res.Errors, line)
		}
		s.log.Warn("refresh incomplete", zap.Error(err))
	} else {
		s.log.Info("content refreshed")
	}
	writeJSON(w, http.StatusOK, res)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, content.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sheets.ErrUpstream):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		s.log.Error("api request failed", zap.String("path", r.URL.Path), zap.Error(err), zap.String("request_id", RequestIDFrom(r.Context())))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
