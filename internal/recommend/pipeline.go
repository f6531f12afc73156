// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tomtom215/resonance/internal/cache"
	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/metrics"
	"github.com/tomtom215/resonance/internal/provider"
)

// MemoName is the metrics label of the result memo.
const MemoName = "recommend_memo"

// Dependencies are the shared collaborators of a Pipeline.
type Dependencies struct {
	Similarity SimilarityProvider
	Catalog    CatalogProvider
	Caches     Caches

	// Rand drives discovery sampling. Nil seeds one from Config.Seed.
	Rand *rand.Rand
}

// Pipeline runs recommendation invocations. It is safe for concurrent use.
type Pipeline struct {
	cfg       Config
	catalog   CatalogProvider
	discovery *Discovery
	harvester *Harvester
	resolver  *Resolver
	features  *cache.Expiring[Features]
	memo      *expirable.LRU[string, *Result]
}

// NewPipeline wires a pipeline from cfg and deps.
func NewPipeline(cfg *Config, deps Dependencies) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Similarity == nil || deps.Catalog == nil {
		return nil, errors.New("similarity and catalog providers are required")
	}

	rng := deps.Rand
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for artist shuffling
	}

	caches := deps.Caches.withDefaults()

	p := &Pipeline{
		cfg:       *cfg,
		catalog:   deps.Catalog,
		discovery: NewDiscovery(deps.Similarity, caches.Similar, cfg.SimilarLimit, cfg.FamiliarCap, rng),
		harvester: NewHarvester(deps.Similarity, caches.TopTracks, cfg.HarvestWorkers, cfg.TopTracksLimit),
		resolver:  NewResolver(deps.Catalog, caches.Resolved),
		features:  caches.Features,
	}
	if cfg.MemoEnabled {
		p.memo = expirable.NewLRU[string, *Result](cfg.MemoSize, nil, cfg.MemoTTL)
	}
	return p, nil
}

// Recommend produces up to MaxResults novel tracks for the request's seeds.
//
// Errors:
//   - ErrMissingCredential or ErrNoSeeds before any external call
//   - *StageError when a step yields nothing
//   - *ExternalError when the seed tracks cannot be fetched at all
//   - the context error when ctx ends
func (p *Pipeline) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(req.Token) == "" {
		metrics.RecordPipelineRun("rejected", "", time.Since(start), 0)
		return nil, ErrMissingCredential
	}
	seeds := normalizeSeeds(req.SeedTrackIDs)
	if len(seeds) == 0 {
		metrics.RecordPipelineRun("rejected", "", time.Since(start), 0)
		return nil, ErrNoSeeds
	}

	fp := Fingerprint(seeds)
	logger := logging.LoggerFromContext(ctx).With().
		Str("component", "recommend").
		Str("fingerprint", fp[:12]).
		Logger()
	ctx = logging.ContextWithLogger(ctx, logger)

	res, err := p.run(ctx, fp, seeds, req.Token)
	duration := time.Since(start)
	if err != nil {
		var stageErr *StageError
		switch {
		case errors.As(err, &stageErr):
			metrics.RecordPipelineRun("stage_failed", string(stageErr.Stage), duration, 0)
			logging.Ctx(ctx).Info().Str("stage", string(stageErr.Stage)).Dur("duration", duration).Msg(stageErr.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			metrics.RecordPipelineRun("canceled", "", duration, 0)
		default:
			metrics.RecordPipelineRun("error", "", duration, 0)
			logging.Ctx(ctx).Error().Err(err).Dur("duration", duration).Msg("Recommendation failed")
		}
		return nil, err
	}

	if res.Cached {
		metrics.RecordPipelineRun("memoized", "", duration, len(res.TrackIDs))
		logging.Ctx(ctx).Debug().Int("results", len(res.TrackIDs)).Msg("Serving memoized recommendations")
		return res, nil
	}

	res.Fingerprint = fp
	res.Duration = duration
	if p.memo != nil {
		p.memo.Add(fp, res.clone())
	}

	metrics.RecordPipelineRun("success", "", duration, len(res.TrackIDs))
	logging.Ctx(ctx).Info().
		Int("seeds", len(seeds)).
		Int("results", len(res.TrackIDs)).
		Int("scored", len(res.Scores)).
		Dur("duration", duration).
		Msg("Recommendations generated")

	return res, nil
}

// RecommendFromTopTracks uses the listener's top tracks for timeRange as the
// seed set.
func (p *Pipeline) RecommendFromTopTracks(ctx context.Context, token, timeRange string) (*Result, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredential
	}

	top, err := p.catalog.TopTracks(ctx, token, timeRange)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ExternalError{Op: "fetch top tracks", Err: err}
	}

	ids := make([]string, 0, len(top))
	for i := range top {
		ids = append(ids, top[i].ID)
	}
	return p.Recommend(ctx, Request{SeedTrackIDs: ids, Token: token})
}

// MemoLen returns the number of memoized results.
func (p *Pipeline) MemoLen() int {
	if p.memo == nil {
		return 0
	}
	return p.memo.Len()
}

// Memo exposes the memo size to a stats reporter.
func (p *Pipeline) Memo() Sized {
	return memoSize{p}
}

type memoSize struct{ p *Pipeline }

func (m memoSize) Name() string { return MemoName }
func (m memoSize) Len() int     { return m.p.MemoLen() }

// run executes the pipeline steps. The seed lookup comes before the memo
// check so a memoized result is only served to a token the catalog accepts.
func (p *Pipeline) run(ctx context.Context, fp string, seeds []string, token string) (*Result, error) {
	seedTracks, err := p.catalog.GetTracks(ctx, token, seeds)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ExternalError{Op: "fetch seed tracks", Err: err}
	}

	if p.memo != nil {
		if memoized, ok := p.memo.Get(fp); ok {
			out := memoized.clone()
			out.Cached = true
			return out, nil
		}
	}

	artistNames := make([]string, 0, len(seedTracks))
	for i := range seedTracks {
		artistNames = append(artistNames, seedTracks[i].PrimaryArtist())
	}
	seedArtists := uniqueNames(artistNames)
	if len(seedArtists) == 0 {
		return nil, stageError(StageSeedArtists)
	}

	pool, err := p.discovery.Discover(ctx, seedArtists)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, stageError(StageSimilarArtists)
	}

	candidates, err := p.harvester.Harvest(ctx, pool, p.cfg.HarvestTarget)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, stageError(StageCandidates)
	}

	chosen, err := p.resolveAll(ctx, token, seeds, candidates)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return nil, stageError(StageResolve)
	}

	res := &Result{
		Scores:           make(map[string]float64),
		SeedArtists:      len(seedArtists),
		CandidateArtists: len(pool),
	}

	if !p.cfg.RerankEnabled {
		for _, t := range chosen {
			res.TrackIDs = append(res.TrackIDs, t.ID)
		}
		return res, nil
	}

	if err := p.rank(ctx, token, seeds, chosen, res); err != nil {
		return nil, err
	}
	return res, nil
}

// resolveAll resolves candidates in order until MaxResults distinct tracks
// that are not seeds have been found.
func (p *Pipeline) resolveAll(ctx context.Context, token string, seeds []string, candidates []Candidate) ([]Track, error) {
	taken := make(map[string]struct{}, len(seeds)+p.cfg.MaxResults)
	for _, id := range seeds {
		taken[id] = struct{}{}
	}

	chosen := make([]Track, 0, p.cfg.MaxResults)
	for _, c := range candidates {
		if len(chosen) >= p.cfg.MaxResults {
			break
		}
		id, ok, err := p.resolver.Resolve(ctx, token, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, dup := taken[id]; dup {
			continue
		}
		taken[id] = struct{}{}
		chosen = append(chosen, Track{ID: id, Name: c.TrackName, Artist: c.ArtistName})
	}
	return chosen, nil
}

// rank orders chosen by similarity to the seeds and fills res. Tracks that
// cannot be scored follow the scored ones in resolution order.
func (p *Pipeline) rank(ctx context.Context, token string, seeds []string, chosen []Track, res *Result) error {
	ids := make([]string, 0, len(seeds)+len(chosen))
	ids = append(ids, seeds...)
	for _, t := range chosen {
		ids = append(ids, t.ID)
	}

	features, err := p.loadFeatures(ctx, token, ids)
	if err != nil {
		return err
	}

	seedTracks := make([]Track, 0, len(seeds))
	for _, id := range seeds {
		seedTracks = append(seedTracks, Track{ID: id, Features: features[id]})
	}
	for i := range chosen {
		chosen[i].Features = features[chosen[i].ID]
	}

	scored := Rank(seedTracks, chosen)
	for _, s := range scored {
		res.TrackIDs = append(res.TrackIDs, s.Track.ID)
		res.Scores[s.Track.ID] = s.Score
	}
	for _, t := range chosen {
		if _, ok := res.Scores[t.ID]; !ok {
			res.TrackIDs = append(res.TrackIDs, t.ID)
		}
	}
	return nil
}

// loadFeatures returns feature vectors for ids, reading through the features
// cache. Tracks the catalog cannot analyze are absent from the map.
func (p *Pipeline) loadFeatures(ctx context.Context, token string, ids []string) (map[string]*Features, error) {
	out := make(map[string]*Features, len(ids))

	var missing []string
	for _, id := range ids {
		if f, ok := p.features.Get(id); ok {
			out[id] = &f
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := p.catalog.AudioFeatures(ctx, token, missing)
	if err != nil {
		if !provider.IsRecoverable(err) {
			return nil, err
		}
		logging.Ctx(ctx).Warn().Err(err).Int("tracks", len(missing)).Msg("Audio features unavailable, results will not be reranked")
	}

	for id, f := range fetched {
		p.features.Put(id, f)
		out[id] = &f
	}
	return out, nil
}
