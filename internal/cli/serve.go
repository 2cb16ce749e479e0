package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/survfit/pkg/buildinfo"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/export"
	"github.com/matzehuels/survfit/pkg/observability"
	"github.com/matzehuels/survfit/pkg/pipeline"
	"github.com/matzehuels/survfit/pkg/render"
)

var contentTypes = map[string]string{
	export.FormatSVG:  "image/svg+xml",
	export.FormatPNG:  "image/png",
	export.FormatPDF:  "application/pdf",
	export.FormatJSON: "application/json",
}

func (c *CLI) serveCommand() *cobra.Command {
	var (
		dir     string
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview a directory of recipes over HTTP",
		Long: `Serve renders recipes from a directory on request:

  GET /recipes                  names of the recipes in the directory
  GET /recipes/{name}           the figure as SVG
  GET /recipes/{name}/{format}  the figure as svg, png, pdf or json
  GET /recipes/{name}/table     the risk tables as text
  GET /health                   liveness check

Rendered artifacts are cached, so reloading an unchanged figure is cheap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), dir, addr, noCache)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "recipe directory")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $SURVFIT_ADDR or localhost:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, dir, addr string, noCache bool) error {
	runner, cfg, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	if addr == "" {
		addr = cfg.Addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newPreviewServer(dir, runner, c.Logger),
		ReadHeaderTimeout: 15 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Serving %s", dir)
	printKeyValue("address", StyleLink.Render("http://"+addr+"/recipes"))
	printKeyValue("cache", cfg.Backend())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// previewServer renders recipes from one directory.
type previewServer struct {
	dir    string
	runner *pipeline.Runner
	logger *log.Logger
}

// newPreviewServer returns the preview HTTP handler.
func newPreviewServer(dir string, runner *pipeline.Runner, logger *log.Logger) http.Handler {
	s := &previewServer{dir: dir, runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))

	r.Get("/health", handleHealth)
	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{name}", s.handleFigure)
		r.Get("/{name}/table", s.handleTable)
		r.Get("/{name}/{format}", s.handleFigure)
	})
	return r
}

// loggingMiddleware logs each request and reports it to the server hooks.
func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := withLogger(r.Context(), logger.With("request_id", middleware.GetReqID(r.Context())))
			r = r.WithContext(ctx)
			observability.Server().OnRequest(ctx, r.Method, r.URL.Path)

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			observability.Server().OnResponse(ctx, r.Method, r.URL.Path, status, time.Since(start))
			loggerFromContext(ctx).Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *previewServer) handleList(w http.ResponseWriter, r *http.Request) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.toml"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".toml"))
	}
	slices.Sort(names)
	writeJSON(w, http.StatusOK, map[string][]string{"recipes": names})
}

func (s *previewServer) handleFigure(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format == "" {
		format = export.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", `"`+res.Figure.ID()+`"`)
	w.Header().Set("X-Survfit-Cache", cacheStatus(res.CacheInfo.RenderHit))
	_, _ = w.Write(res.Artifacts[format])
}

func (s *previewServer) handleTable(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.runner.Estimate(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fig, err := s.runner.Build(r.Context(), m, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(render.Table(fig)))
}

// options resolves the {name} parameter to validated pipeline options.
func (s *previewServer) options(r *http.Request) (pipeline.Options, error) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateRecipeName(name); err != nil {
		return pipeline.Options{}, err
	}
	rel := name + ".toml"
	if err := errors.ValidatePath(rel); err != nil {
		return pipeline.Options{}, err
	}
	path := filepath.Join(s.dir, rel)
	if _, err := os.Stat(path); err != nil {
		return pipeline.Options{}, errors.New(errors.ErrCodeNotFound, "no recipe named %q", name)
	}
	opts := pipeline.Options{RecipePath: path, Logger: loggerFromContext(r.Context())}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	// Data paths served to the network must stay inside the recipe dir.
	if err := errors.ValidatePath(opts.Recipe.Data.Path); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func (s *previewServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConfiguration, errors.ErrCodeLayout, errors.ErrCodeEstimation:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
