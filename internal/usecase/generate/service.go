package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"sync/atomic"
	"time"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/observability/metrics"
	"cryptopress/internal/observability/tracing"
	"cryptopress/internal/repository"
	"cryptopress/internal/utils/text"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Config holds tunables for the generation orchestrator.
type Config struct {
	// CandidateOverfetch is how many candidates to request from discovery.
	// Generous so the run survives dedup and freshness losses.
	CandidateOverfetch int

	// SummaryMaxRunes bounds the derived plain-text summary.
	SummaryMaxRunes int

	// BatchCooldown is the delay inserted between GenerateMany iterations.
	// It is a deliberate throttle against the scrape target and the rewrite
	// backend, not an accidental serialization.
	BatchCooldown time.Duration

	// AuthorName is the byline applied to generated articles.
	AuthorName string

	// FallbackImages are used when the scrape yields no hero image.
	FallbackImages []string
}

// DefaultConfig returns production defaults for the orchestrator.
func DefaultConfig() Config {
	return Config{
		CandidateOverfetch: 40,
		SummaryMaxRunes:    200,
		BatchCooldown:      5 * time.Second,
		AuthorName:         "Tường An",
		FallbackImages: []string{
			"https://placehold.co/600x400?text=Thi+Truong+Crypto",
			"https://placehold.co/600x400?text=Cong+Nghe+Blockchain",
			"https://placehold.co/600x400?text=Tai+San+So",
			"https://placehold.co/600x400?text=Bieu+Do+Giao+Dich",
		},
	}
}

// Service coordinates candidate discovery, scraping, rewriting and
// persistence for the generation pipeline.
type Service struct {
	candidates CandidateSource
	scraper    PageScraper
	rewriter   Rewriter
	articles   repository.ArticleRepository
	runs       repository.GenerationRunRepository
	cfg        Config

	// inFlight is the single-run guard: a manual trigger racing a scheduled
	// trigger gets ErrGenerationInProgress instead of a duplicate run.
	inFlight atomic.Bool

	now  func() time.Time
	pick func(n int) int
}

// NewService creates a generation service with the provided collaborators.
func NewService(
	candidates CandidateSource,
	scraper PageScraper,
	rewriter Rewriter,
	articles repository.ArticleRepository,
	runs repository.GenerationRunRepository,
	cfg Config,
) *Service {
	if cfg.CandidateOverfetch <= 0 {
		cfg.CandidateOverfetch = DefaultConfig().CandidateOverfetch
	}
	if cfg.SummaryMaxRunes <= 0 {
		cfg.SummaryMaxRunes = DefaultConfig().SummaryMaxRunes
	}
	return &Service{
		candidates: candidates,
		scraper:    scraper,
		rewriter:   rewriter,
		articles:   articles,
		runs:       runs,
		cfg:        cfg,
		now:        time.Now,
		pick:       rand.Intn,
	}
}

// GenerateOne executes a single generation attempt under the single-run
// guard. It creates a GenerationRun row up front and finalizes it to exactly
// one terminal status regardless of outcome; the log write is part of the
// contract, not optional cleanup.
//
// The "nothing new" outcome (every candidate already stored) is a successful
// run with zero articles created; the most recently stored article is
// returned unchanged.
func (s *Service) GenerateOne(ctx context.Context) (*entity.Article, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}
	defer s.inFlight.Store(false)

	ctx, span := tracing.GetTracer().Start(ctx, "generate-one")
	defer span.End()

	run := &entity.GenerationRun{
		ID:        uuid.NewString(),
		Status:    entity.RunStatusRunning,
		StartedAt: s.now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create generation run: %w", err)
	}

	finalized := false
	defer func() {
		if r := recover(); r != nil {
			s.finishRun(ctx, run, entity.RunStatusFailed, 0,
				fmt.Sprintf("panic: %v", r), string(debug.Stack()))
			panic(r)
		}
		if !finalized {
			// Defensive: every return path below finalizes explicitly.
			s.finishRun(ctx, run, entity.RunStatusFailed, 0,
				"generation aborted without terminal status", "")
		}
	}()

	article, created, err := s.generate(ctx, run)
	if err != nil {
		s.finishRun(ctx, run, entity.RunStatusFailed, 0, err.Error(), diagnosticOf(err))
		finalized = true
		return nil, err
	}

	s.finishRun(ctx, run, entity.RunStatusSuccess, created, "", "")
	finalized = true
	if created > 0 {
		metrics.RecordArticleCreated()
	}
	return article, nil
}

// generate performs steps 2-8 of the pipeline. The caller owns run
// finalization.
func (s *Service) generate(ctx context.Context, run *entity.GenerationRun) (*entity.Article, int, error) {
	logger := slog.Default()

	cands, err := s.candidates.ListCandidates(ctx, s.cfg.CandidateOverfetch)
	if err != nil {
		return nil, 0, fmt.Errorf("discover candidates: %w", err)
	}
	metrics.RecordCandidatesDiscovered(len(cands))

	fresh, err := s.filterStored(ctx, cands)
	if err != nil {
		return nil, 0, err
	}

	if len(fresh) == 0 {
		logger.Info("no new candidates, nothing to generate",
			slog.String("run_id", run.ID),
			slog.Int("discovered", len(cands)))
		latest, err := s.articles.Latest(ctx)
		if err != nil && !errors.Is(err, entity.ErrArticleNotFound) {
			return nil, 0, fmt.Errorf("load latest article: %w", err)
		}
		return latest, 0, nil
	}

	cand := fresh[s.pick(len(fresh))]
	logger.Info("candidate picked",
		slog.String("run_id", run.ID),
		slog.String("url", cand.URL),
		slog.Int("remaining", len(fresh)))

	scraped, err := s.scraper.Scrape(ctx, cand.URL)
	if err != nil {
		metrics.RecordScrape(false)
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrContentExtraction, cand.URL, err)
	}
	metrics.RecordScrape(true)

	rw, err := s.rewriter.Rewrite(ctx, scraped.Title, scraped.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRewriteFailed, err)
	}

	article := s.buildArticle(cand, scraped, rw)
	if err := article.Validate(); err != nil {
		return nil, 0, fmt.Errorf("validate article: %w", err)
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, 0, fmt.Errorf("persist article: %w", err)
	}

	logger.Info("article created",
		slog.String("run_id", run.ID),
		slog.String("article_id", article.ID),
		slog.String("slug", article.Slug),
		slog.String("source_url", article.SourceURL))

	return article, 1, nil
}

// filterStored removes candidates whose source URL is already stored.
func (s *Service) filterStored(ctx context.Context, cands []Candidate) ([]Candidate, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(cands))
	for _, c := range cands {
		urls = append(urls, c.URL)
	}
	stored, err := s.articles.SourceURLSet(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("check stored source URLs: %w", err)
	}
	fresh := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if !stored[c.URL] {
			fresh = append(fresh, c)
		}
	}
	return fresh, nil
}

// buildArticle derives the persisted entity from pipeline outputs.
// The article date is the externally observed publish time, not scrape time.
func (s *Service) buildArticle(cand Candidate, scraped *ScrapedContent, rw *Rewrite) *entity.Article {
	hero := scraped.HeroImageURL
	if hero == "" && len(s.cfg.FallbackImages) > 0 {
		hero = s.cfg.FallbackImages[s.pick(len(s.cfg.FallbackImages))]
	}

	source := cand.SourceName
	if source == "" {
		source = scraped.Author
	}

	now := s.now()
	return &entity.Article{
		ID:          uuid.NewString(),
		Title:       rw.Title,
		Slug:        text.UniqueSlug(rw.Title),
		Summary:     text.Summarize(rw.ContentHTML, s.cfg.SummaryMaxRunes),
		Content:     renderContent(rw.ContentHTML, scraped.SourceURL, source),
		HeroImage:   hero,
		Tags:        text.ExtractTags(rw.Title),
		Author:      s.cfg.AuthorName,
		Source:      source,
		SourceURL:   scraped.SourceURL,
		IsPublished: true,
		Date:        scraped.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// renderContent wraps the localized body with the source attribution footer.
func renderContent(bodyHTML, sourceURL, sourceName string) string {
	return fmt.Sprintf(`<article>
<div class="prose prose-lg max-w-none">
%s
</div>
<div class="article-attribution">
<p><small>Bài viết này được tổng hợp và dịch từ các nguồn bên ngoài. Đọc bản gốc tại: <a href="%s" target="_blank" rel="noopener">%s</a>.</small></p>
</div>
</article>`, bodyHTML, sourceURL, sourceName)
}

// finishRun finalizes the run created at the start of this invocation.
// It survives caller-context cancellation and never fails the pipeline;
// a finalization error is logged, not propagated.
func (s *Service) finishRun(ctx context.Context, run *entity.GenerationRun, status entity.RunStatus, created int, errMsg, errDetails string) {
	completed := s.now()
	duration := completed.Sub(run.StartedAt)

	result := repository.RunResult{
		Status:          status,
		ArticlesCreated: created,
		ErrorMessage:    errMsg,
		ErrorDetails:    errDetails,
		CompletedAt:     completed,
		DurationMS:      duration.Milliseconds(),
	}

	safeCtx := context.WithoutCancel(ctx)
	if err := s.runs.Finish(safeCtx, run.ID, result); err != nil {
		slog.Error("failed to finalize generation run",
			slog.String("run_id", run.ID),
			slog.String("status", string(status)),
			slog.Any("error", err))
		return
	}
	metrics.RecordGenerationRun(string(status), duration)
}

// diagnosticOf extracts full diagnostic detail when the error carries one.
func diagnosticOf(err error) string {
	var de DiagnosticError
	if errors.As(err, &de) {
		return de.Diagnostic()
	}
	return ""
}

// GenerateMany repeats GenerateOne n times sequentially with a cool-down
// between iterations, continuing past individual failures and aggregating a
// summary instead of aborting on first error. Context cancellation stops the
// remaining iterations.
func (s *Service) GenerateMany(ctx context.Context, n int) (*BatchResult, error) {
	logger := slog.Default()
	result := &BatchResult{Errors: []string{}}

	limiter := rate.NewLimiter(rate.Every(s.cfg.BatchCooldown), 1)

	for i := 0; i < n; i++ {
		if err := limiter.Wait(ctx); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch aborted: %v", err))
			break
		}

		_, err := s.GenerateOne(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("article %d/%d: %v", i+1, n, err))
				break
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("article %d/%d: %v", i+1, n, err))
			logger.Warn("batch iteration failed",
				slog.Int("iteration", i+1),
				slog.Int("total", n),
				slog.Any("error", err))
			continue
		}
		result.Success++
	}

	logger.Info("batch generation completed",
		slog.Int("requested", n),
		slog.Int("success", result.Success),
		slog.Int("failed", result.Failed))

	return result, nil
}
