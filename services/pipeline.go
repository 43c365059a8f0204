package services

import (
	"time"

	"leadfinder/config"
	"leadfinder/metrics"
	"leadfinder/models"
	"leadfinder/utils"
)

// Result is everything a run produces.
type Result struct {
	Leads   []*models.Lead
	Queries []models.QueryRequest
	Counts  map[string]models.StepCounts
	Report  *models.CoverageReport
}

// Lines renders the follow-up queries one per line.
func (r *Result) Lines() []string { return QueryLines(r.Queries) }

// Pipeline wires the stages together: clean and zip-filter every batch,
// merge, sort, then measure coverage.
type Pipeline struct {
	logger   *utils.Logger
	metrics  *metrics.Metrics
	taxonomy *config.Taxonomy
	workers  int

	Categories *CategorySpec
	Zips       *ZipMatcher
	Merger     *Merger
	cleaner    *Cleaner
	gaps       *GapAnalyzer
	insights   *InsightService
}

// NewPipeline builds every stage from cfg. m may be nil.
func NewPipeline(cfg *config.Config, logger *utils.Logger, m *metrics.Metrics) *Pipeline {
	tax := cfg.Taxonomy
	if tax == nil {
		tax = config.DefaultTaxonomy()
	}

	categories := NewCategorySpec(cfg.BusinessTypes)
	zips := NewZipMatcher(logger, cfg.ZipCodes, cfg.ZipCheckLength)

	logger.Info("[pipeline] Target business types: %v", categories.Base)
	logger.Debug("[pipeline] Match set: %v", categories.MatchList())
	logger.Info("[pipeline] Target zip codes: %v", zips.Zips())

	return &Pipeline{
		logger:     logger,
		metrics:    m,
		taxonomy:   tax,
		workers:    cfg.Workers,
		Categories: categories,
		Zips:       zips,
		Merger:     NewMerger(logger, cfg.DefaultFilePrefix, cfg.FallbackSourceName),
		cleaner: NewCleaner(logger, CleanerOptions{
			Categories:         categories,
			SubCategoryFilters: tax.SubCategoryFilters,
			CountryFilters:     cfg.CountryFilters,
			MinReviews:         cfg.MinReviews,
		}),
		gaps:     NewGapAnalyzer(logger, categories, zips, tax.Consolidated),
		insights: NewInsightService(logger, zips),
	}
}

// Insights returns the service used to build and print coverage reports.
func (p *Pipeline) Insights() *InsightService { return p.insights }

// Run processes raw batches. Batches are cleaned in parallel; the result
// does not depend on the order they finish in.
func (p *Pipeline) Run(raws []*models.RawBatch) *Result {
	start := time.Now()

	type cleanedBatch struct {
		batch  *models.Batch
		counts models.StepCounts
	}
	out := utils.Map(p.workers, raws, func(_ int, raw *models.RawBatch) cleanedBatch {
		batch, c := p.cleaner.Clean(raw)
		return cleanedBatch{batch: p.Zips.Filter(batch), counts: c}
	})
	cleaned := make([]*models.Batch, len(out))
	counts := make([]models.StepCounts, len(out))
	for i, o := range out {
		cleaned[i], counts[i] = o.batch, o.counts
	}
	p.observe("clean", start)

	result := &Result{Counts: make(map[string]models.StepCounts, len(raws))}
	for i, raw := range raws {
		result.Counts[raw.File] = counts[i]
		if p.metrics != nil {
			p.metrics.ObserveBatch(counts[i])
			p.metrics.ObserveZipMatched(len(cleaned[i].Leads))
		}
		if len(cleaned[i].Leads) == 0 {
			p.logger.Warn("[pipeline] %s: no leads left after cleaning", raw.File)
		}
	}

	mergeStart := time.Now()
	result.Leads = p.Merger.Merge(cleaned)
	SortLeads(result.Leads, p.taxonomy)
	p.observe("merge", mergeStart)

	gapStart := time.Now()
	result.Queries = p.gaps.Analyze(result.Leads)
	result.Report = p.insights.Generate(result.Leads, len(result.Queries))
	p.observe("gaps", gapStart)

	if p.metrics != nil {
		p.metrics.LeadsFinal.Set(float64(len(result.Leads)))
		p.metrics.QueriesFinal.Set(float64(len(result.Queries)))
	}

	p.logger.Info("[pipeline] %d files → %d unique leads, %d follow-up queries (%s)",
		len(raws), len(result.Leads), len(result.Queries), time.Since(start).Round(time.Millisecond))
	return result
}

func (p *Pipeline) observe(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.Since(stage, start)
	}
}
