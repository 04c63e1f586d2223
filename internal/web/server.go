// Package web serves the launch dashboard over HTTP.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/launchdash/internal/binding"
	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var funcMap = template.FuncMap{
	"fmtKg": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"chartURL": chartURL,
}

// Server renders the dashboard page and the figures bound to its inputs.
// Every request evaluates the registry against its own selection; no state
// is shared between requests.
type Server struct {
	ds       *dataset.Dataset
	reg      *binding.Registry
	defaults model.Selection
	logger   *zap.Logger
	page     *template.Template
}

// New builds a server. defaults fills selection values a request omits.
func New(ds *dataset.Dataset, reg *binding.Registry, defaults model.Selection, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	page, err := template.New("page").Funcs(funcMap).Parse(tmplBase + tmplDashboard)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	return &Server{
		ds:       ds,
		reg:      reg,
		defaults: defaults,
		logger:   logger,
		page:     page,
	}, nil
}

// Handler returns the dashboard routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /chart/{output}", s.handleChart)
	mux.HandleFunc("GET /api/figure/{output}", s.handleFigure)
	mux.HandleFunc("GET /api/sites", s.handleSites)
	mux.HandleFunc("GET /healthz", handleHealth)
	return s.logRequests(mux)
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("dashboard listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("dashboard shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

type dashboardData struct {
	Source            string
	Launches          int
	Sites             []string
	Selection         model.Selection
	SiteInput         string
	PayloadInput      string
	ProportionOutput  string
	CorrelationOutput string
	SliderMin         int
	SliderMax         int
	SliderStep        int
	Dependents        map[string][]string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dependents := map[string][]string{}
	for _, in := range []binding.Input{binding.InputSite, binding.InputPayload} {
		for _, out := range s.reg.Dependents(in) {
			dependents[string(in)] = append(dependents[string(in)], string(out))
		}
	}
	data := dashboardData{
		Source:            s.ds.Source(),
		Launches:          s.ds.Len(),
		Sites:             s.ds.SiteOptions(),
		Selection:         sel,
		SiteInput:         string(binding.InputSite),
		PayloadInput:      string(binding.InputPayload),
		ProportionOutput:  string(binding.OutputProportion),
		CorrelationOutput: string(binding.OutputCorrelation),
		SliderMin:         model.PayloadSliderMin,
		SliderMax:         model.PayloadSliderMax,
		SliderStep:        model.PayloadSliderStep,
		Dependents:        dependents,
	}
	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("template error", zap.Error(err))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, spec, chart.DefaultPNGWidth, chart.DefaultPNGHeight); err != nil {
		s.logger.Warn("chart render failed, serving blank image", zap.String("output", r.PathValue("output")), zap.Error(err))
		buf.Reset()
		if err := chart.BlankPNG(&buf, chart.DefaultPNGWidth, chart.DefaultPNGHeight); err != nil {
			http.Error(w, "failed to render chart", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.evaluate(w, r)
	if !ok {
		return
	}
	writeJSON(w, spec)
}

type sitesResponse struct {
	Sites   []string           `json:"sites"`
	Options []string           `json:"options"`
	Bounds  model.PayloadRange `json:"bounds"`
	Slider  sliderDomain       `json:"slider"`
}

type sliderDomain struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sitesResponse{
		Sites:   s.ds.Sites(),
		Options: s.ds.SiteOptions(),
		Bounds:  s.ds.PayloadBounds(),
		Slider: sliderDomain{
			Min:  model.PayloadSliderMin,
			Max:  model.PayloadSliderMax,
			Step: model.PayloadSliderStep,
		},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// evaluate resolves the output and selection of r and computes the figure.
// It writes the error response itself and reports false on failure.
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) (chart.Spec, bool) {
	out := binding.Output(r.PathValue("output"))
	if _, ok := s.reg.Inputs(out); !ok {
		http.NotFound(w, r)
		return chart.Spec{}, false
	}
	sel, err := s.selection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return chart.Spec{}, false
	}
	spec, err := s.reg.Evaluate(out, sel)
	if err != nil {
		s.logger.Error("evaluate failed", zap.String("output", string(out)), zap.Error(err))
		http.Error(w, "failed to compute figure", http.StatusInternalServerError)
		return chart.Spec{}, false
	}
	return spec, true
}

// selection reads site, low and high from the query, falling back to the
// server defaults. Values outside the slider domain pass through and simply
// filter.
func (s *Server) selection(r *http.Request) (model.Selection, error) {
	sel := s.defaults
	q := r.URL.Query()
	if site := q.Get("site"); site != "" {
		sel.Site = site
	}
	var err error
	if sel.Payload.Low, err = floatParam(q, "low", sel.Payload.Low); err != nil {
		return sel, err
	}
	if sel.Payload.High, err = floatParam(q, "high", sel.Payload.High); err != nil {
		return sel, err
	}
	return sel, nil
}

func floatParam(q url.Values, name string, fallback float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not a number", name, raw)
	}
	return v, nil
}

func chartURL(output string, sel model.Selection) string {
	q := url.Values{}
	q.Set("site", sel.Site)
	q.Set("low", strconv.FormatFloat(sel.Payload.Low, 'f', -1, 64))
	q.Set("high", strconv.FormatFloat(sel.Payload.High, 'f', -1, 64))
	return "/chart/" + url.PathEscape(output) + "?" + q.Encode()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
