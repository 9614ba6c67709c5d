package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/enrich"
	"github.com/sells-group/leadgen-cli/internal/search"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/openai"
	"github.com/sells-group/leadgen-cli/pkg/pagespeed"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// pipelineEnv holds the initialized store, clients and search service
// shared by the search/serve commands.
type pipelineEnv struct {
	Store   store.Store
	Service *search.Service
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured backend. The sqlite driver is the
// default; postgres is selected via store.driver.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "", "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, the external clients and the search
// service. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	// Places client (required for fresh searches; cached searches work without it).
	var placesClient places.Client
	if cfg.Places.Key != "" {
		placesClient = places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
	} else {
		zap.L().Warn("LEADGEN_PLACES_KEY not set, discovery disabled")
	}

	// PageSpeed client (optional — leads simply carry no metrics without it).
	var speedClient pagespeed.Client
	if cfg.PageSpeed.Key != "" {
		speedClient = pagespeed.NewClient(cfg.PageSpeed.Key, pagespeed.WithBaseURL(cfg.PageSpeed.BaseURL))
	} else {
		zap.L().Debug("LEADGEN_PAGESPEED_KEY not set, performance metrics disabled")
	}

	// OpenAI client (optional — leads carry the unconfigured error object without it).
	var openaiClient openai.Client
	if cfg.OpenAI.Key != "" {
		opts := []openai.Option{
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.Model),
		}
		if cfg.Enrich.CallTimeoutSecs > 0 {
			opts = append(opts, openai.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Enrich.CallTimeoutSecs) * time.Second,
			}))
		}
		openaiClient = openai.NewClient(cfg.OpenAI.Key, opts...)
	} else {
		zap.L().Debug("LEADGEN_OPENAI_KEY not set, insight analysis disabled")
	}

	analyzer := enrich.NewAnalyzer(openaiClient, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens,
		enrich.Profile{
			BusinessType: cfg.Profile.BusinessType,
			ServiceAreas: cfg.Profile.ServiceAreas,
		},
		cfg.Insight.CategoryPrompts,
	)
	inspector := enrich.NewInspector(
		enrich.NewSpeedAdapter(speedClient),
		analyzer,
		time.Duration(cfg.Enrich.NavTimeoutSecs)*time.Second,
		time.Duration(cfg.Enrich.TLSTimeoutSecs)*time.Second,
	)

	svc := search.New(st, placesClient, inspector, search.Options{
		Concurrency:  cfg.Enrich.Concurrency,
		MaxRetries:   cfg.Enrich.MaxRetries,
		DefaultCount: cfg.Search.DefaultCount,
		MaxPages:     cfg.Search.MaxPages,
		PageDelay:    time.Duration(cfg.Search.PageDelaySecs * float64(time.Second)),
	})

	return &pipelineEnv{Store: st, Service: svc}, nil
}
