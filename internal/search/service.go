package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/enrich"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scorer"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// Enricher produces the enrichment for one candidate. Implemented by
// enrich.Inspector; faked in tests.
type Enricher interface {
	Inspect(ctx context.Context, b model.Business) (model.Enrichment, error)
}

// Options tunes the service. Zero values fall back to the defaults
// noted per field.
type Options struct {
	Concurrency  int           // enrichment workers, default 5
	MaxRetries   int           // extra attempts per candidate, default 2
	DefaultCount int           // desired results when the caller passes none, default 2
	MaxPages     int           // discovery pages per run, default 3
	PageDelay    time.Duration // spacing between successive pages, default 2s
}

func (o *Options) fill() {
	if o.Concurrency <= 0 {
		o.Concurrency = 5
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 2
	}
	if o.DefaultCount <= 0 {
		o.DefaultCount = 2
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 3
	}
	if o.PageDelay <= 0 {
		o.PageDelay = 2 * time.Second
	}
}

// Service runs searches end to end and accumulates their results per
// canonical key.
type Service struct {
	store    store.Store
	places   places.Client
	enricher Enricher
	opts     Options
	limiter  *rate.Limiter

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// New builds a service. places may be nil, in which case only cached
// complete searches can be answered.
func New(st store.Store, pc places.Client, enricher Enricher, opts Options) *Service {
	opts.fill()
	return &Service{
		store:    st,
		places:   pc,
		enricher: enricher,
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Every(opts.PageDelay), 1),
		keyLocks: make(map[string]*sync.Mutex),
	}
}

// Response is the outcome of one search call. Leads are ordered by
// descending general score.
type Response struct {
	Query       string       `json:"query"`
	Leads       []model.Lead `json:"results"`
	ResultCount int          `json:"result_count"`
	Cached      bool         `json:"cached"`
}

// Search resolves a query: a complete cached record is returned as is;
// otherwise discovery resumes from the record's continuation token,
// new candidates are enriched, scored and persisted, and the record is
// merged. Concurrent searches for the same canonical key serialize on
// a per-key lock so counters and ordering stay consistent.
func (s *Service) Search(ctx context.Context, query string, count int) (*Response, error) {
	key := CanonicalKey(query)
	if key == "" {
		return nil, eris.New("search: empty query")
	}
	if count <= 0 {
		count = s.opts.DefaultCount
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.store.GetSearch(ctx, key)
	if err != nil {
		return nil, eris.Wrap(err, "search: load record")
	}

	if rec != nil && rec.NextPageToken == "" {
		rec.SearchCount++
		rec.UpdatedAt = time.Now().UTC()
		if err := s.store.SaveSearch(ctx, rec); err != nil {
			return nil, eris.Wrap(err, "search: save record")
		}
		leads, err := s.leadsInOrder(ctx, rec.LeadIDs)
		if err != nil {
			return nil, err
		}
		zap.L().Info("search: served from cache", zap.String("key", key), zap.Int("results", len(leads)))
		return &Response{Query: query, Leads: leads, ResultCount: rec.ResultCount, Cached: true}, nil
	}

	if s.places == nil {
		return nil, eris.New("search: discovery client not configured")
	}

	var token string
	if rec != nil {
		token = rec.NextPageToken
	}
	candidates, nextToken, err := s.discover(ctx, query, token, count)
	if err != nil {
		return nil, err
	}
	zap.L().Info("search: discovered candidates",
		zap.String("key", key),
		zap.Int("count", len(candidates)),
		zap.Bool("more", nextToken != ""),
	)

	outcomes := enrich.Process(ctx, candidates, s.opts.Concurrency, s.opts.MaxRetries, s.handle)

	now := time.Now().UTC()
	newLeads := make([]model.Lead, 0, len(outcomes))
	for _, oc := range outcomes {
		lead := model.Lead{
			ID:         uuid.NewString(),
			Business:   oc.Business,
			Enrichment: oc.Enrichment,
			SearchKey:  key,
			CreatedAt:  now,
		}
		if oc.Failed() {
			lead.Enrichment.Error = oc.Err
		}
		lead.Score = scorer.Score(lead.Business, lead.Enrichment, now)
		if err := s.store.SaveLead(ctx, &lead); err != nil {
			return nil, eris.Wrap(err, "search: save lead")
		}
		newLeads = append(newLeads, lead)
	}

	merged, err := s.merge(ctx, key, newLeads, nextToken)
	if err != nil {
		return nil, err
	}

	leads, err := s.leadsInOrder(ctx, merged.LeadIDs)
	if err != nil {
		return nil, err
	}
	return &Response{Query: query, Leads: leads, ResultCount: merged.ResultCount, Cached: false}, nil
}

// Resolve returns the accumulated record and its leads in stored order,
// without triggering discovery. Both return values are nil when the key
// has never been searched.
func (s *Service) Resolve(ctx context.Context, query string) (*model.SearchRecord, []model.Lead, error) {
	key := CanonicalKey(query)
	rec, err := s.store.GetSearch(ctx, key)
	if err != nil {
		return nil, nil, eris.Wrap(err, "search: load record")
	}
	if rec == nil {
		return nil, nil, nil
	}
	leads, err := s.leadsInOrder(ctx, rec.LeadIDs)
	if err != nil {
		return nil, nil, err
	}
	return rec, leads, nil
}

// Merge folds newLeads into the record for key under the per-key lock.
// Exposed for callers that persist leads out of band.
func (s *Service) Merge(ctx context.Context, key string, newLeads []model.Lead, nextToken string) (*model.SearchRecord, error) {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()
	return s.merge(ctx, key, newLeads, nextToken)
}

// merge requires the per-key lock to be held. It appends the new lead
// ids, reorders the full set by descending general score with prior
// relative order preserved on ties, bumps the counters and replaces
// the continuation token.
func (s *Service) merge(ctx context.Context, key string, newLeads []model.Lead, nextToken string) (*model.SearchRecord, error) {
	now := time.Now().UTC()
	rec, err := s.store.GetSearch(ctx, key)
	if err != nil {
		return nil, eris.Wrap(err, "search: load record")
	}
	if rec == nil {
		rec = &model.SearchRecord{Key: key, CreatedAt: now}
	}

	ids := make([]string, 0, len(rec.LeadIDs)+len(newLeads))
	ids = append(ids, rec.LeadIDs...)
	for _, lead := range newLeads {
		ids = append(ids, lead.ID)
	}

	leads, err := s.leadsInOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].Score.General > leads[j].Score.General
	})

	rec.LeadIDs = make([]string, len(leads))
	for i, lead := range leads {
		rec.LeadIDs[i] = lead.ID
	}
	rec.SearchCount++
	rec.ResultCount = len(leads)
	rec.NextPageToken = nextToken
	rec.UpdatedAt = now

	if err := s.store.SaveSearch(ctx, rec); err != nil {
		return nil, eris.Wrap(err, "search: save record")
	}
	return rec, nil
}

// discover pulls pages of candidates until the desired count is met,
// the token chain ends, or the page cap is hit. Page fetches are
// spaced out by the limiter; the first is immediate.
func (s *Service) discover(ctx context.Context, query, token string, count int) ([]model.Business, string, error) {
	var all []model.Business
	for page := 0; page < s.opts.MaxPages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, "", eris.Wrap(err, "search: page delay")
		}
		resp, err := s.places.TextSearch(ctx, places.TextSearchRequest{TextQuery: query, PageToken: token})
		if err != nil {
			return nil, "", eris.Wrap(err, "search: discovery")
		}
		for _, p := range resp.Places {
			all = append(all, toBusiness(p))
		}
		token = resp.NextPageToken
		if token == "" || len(all) >= count {
			break
		}
	}
	if len(all) > count {
		all = all[:count]
	}
	return all, token, nil
}

// handle adapts the inspector to the pool's handler signature.
func (s *Service) handle(ctx context.Context, b model.Business) (model.Enrichment, error) {
	return s.enricher.Inspect(ctx, b)
}

// leadsInOrder fetches leads and returns them in the order of ids,
// silently dropping ids the store no longer knows.
func (s *Service) leadsInOrder(ctx context.Context, ids []string) ([]model.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	fetched, err := s.store.GetLeads(ctx, ids)
	if err != nil {
		return nil, eris.Wrap(err, "search: load leads")
	}
	byID := make(map[string]model.Lead, len(fetched))
	for _, lead := range fetched {
		byID[lead.ID] = lead
	}
	ordered := make([]model.Lead, 0, len(fetched))
	for _, id := range ids {
		if lead, ok := byID[id]; ok {
			ordered = append(ordered, lead)
		}
	}
	return ordered, nil
}

func (s *Service) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.keyLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.keyLocks[key] = mu
	}
	return mu
}

func toBusiness(p places.Place) model.Business {
	return model.Business{
		PlaceID:                  p.ID,
		Name:                     p.DisplayName.Text,
		Types:                    p.Types,
		PrimaryType:              p.PrimaryType,
		BusinessStatus:           p.BusinessStatus,
		NationalPhoneNumber:      p.NationalPhoneNumber,
		InternationalPhoneNumber: p.InternationalPhoneNumber,
		WebsiteURI:               p.WebsiteURI,
		GoogleMapsURI:            p.GoogleMapsURI,
		FormattedAddress:         p.FormattedAddress,
		Rating:                   p.Rating,
		UserRatingCount:          p.UserRatingCount,
	}
}
