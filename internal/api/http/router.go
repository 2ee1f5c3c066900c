// Package http exposes the link service over HTTP.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/url-shortener/internal/metrics"
	"github.com/vadimbarashkov/url-shortener/internal/models"
	"github.com/vadimbarashkov/url-shortener/internal/service"
	"github.com/vadimbarashkov/url-shortener/pkg/middleware/recoverer"
)

type LinkService interface {
	CreateLink(ctx context.Context, originalURL, preferredCode, ownerID string) (*models.Link, error)
	GetLink(ctx context.Context, id int64) (*models.Link, error)
	ListLinks(ctx context.Context, ownerID string) ([]models.Link, error)
	UpdateLink(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error)
	DeleteLink(ctx context.Context, id int64) error
}

type TextProcessor interface {
	Process(ctx context.Context, text, baseURL, ownerID string) (*service.ProcessedText, error)
}

type Redirector interface {
	Resolve(ctx context.Context, code string) (string, error)
}

type Authenticator interface {
	Authenticate(token string) (string, error)
}

type routerOptions struct {
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	docsPath string
}

type RouterOption func(*routerOptions)

// WithMetrics instruments requests with m and serves g at /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) RouterOption {
	return func(o *routerOptions) {
		o.metrics = m
		o.gatherer = g
	}
}

// WithDocsPath sets the swagger file served at /docs/swagger.yml.
func WithDocsPath(path string) RouterOption {
	return func(o *routerOptions) {
		o.docsPath = path
	}
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

func NewRouter(
	logger *httplog.Logger,
	links LinkService,
	texts TextProcessor,
	redirects Redirector,
	authn Authenticator,
	opts ...RouterOption,
) http.Handler {
	o := routerOptions{docsPath: "./docs/swagger.yml"}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	if o.metrics != nil {
		r.Use(instrument(o.metrics))
	}

	r.Get("/ping", handlePing)

	if o.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, o.docsPath)
	})

	r.Route("/l", func(r chi.Router) {
		validate := getValidate()

		r.Get("/", handleListLinks(links))
		r.Get("/{ref}", handleRedirect(redirects))
		r.Get("/{ref}/info", handleLinkInfo(links))

		r.Group(func(r chi.Router) {
			r.Use(requireOwner(authn))

			r.Post("/", handleCreateLink(links, validate))
			r.Post("/process-text", handleProcessText(texts, validate))
			r.Put("/{ref}", handleUpdateLink(links, validate))
			r.Delete("/{ref}", handleDeleteLink(links))
		})
	})

	return r
}
