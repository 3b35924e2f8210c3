package generate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/repository"
)

type stubCandidates struct {
	cands []Candidate
	err   error
}

func (s *stubCandidates) ListCandidates(context.Context, int) ([]Candidate, error) {
	return s.cands, s.err
}

type stubScraper struct {
	content *ScrapedContent
	err     error
	panics  bool
	urls    []string
}

func (s *stubScraper) Scrape(_ context.Context, url string) (*ScrapedContent, error) {
	s.urls = append(s.urls, url)
	if s.panics {
		panic("scraper blew up")
	}
	return s.content, s.err
}

type stubRewriter struct {
	rw    *Rewrite
	err   error
	calls int
	// failOn fails only the given 1-based call when non-zero.
	failOn int
}

func (s *stubRewriter) Rewrite(context.Context, string, string) (*Rewrite, error) {
	s.calls++
	if s.failOn != 0 {
		if s.calls == s.failOn {
			return nil, s.err
		}
		return s.rw, nil
	}
	return s.rw, s.err
}

// memArticles is an in-memory ArticleRepository for orchestrator tests.
type memArticles struct {
	stored    map[string]bool
	latest    *entity.Article
	created   []*entity.Article
	createErr error
}

func (m *memArticles) Create(_ context.Context, a *entity.Article) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, a)
	return nil
}

func (m *memArticles) Get(context.Context, string) (*entity.Article, error) {
	return nil, entity.ErrArticleNotFound
}

func (m *memArticles) GetBySlug(context.Context, string) (*entity.Article, error) {
	return nil, entity.ErrArticleNotFound
}

func (m *memArticles) List(context.Context) ([]*entity.Article, error) { return nil, nil }

func (m *memArticles) Update(context.Context, *entity.Article) error { return nil }

func (m *memArticles) Delete(context.Context, string) error { return nil }

func (m *memArticles) Latest(context.Context) (*entity.Article, error) {
	if m.latest == nil {
		return nil, entity.ErrArticleNotFound
	}
	return m.latest, nil
}

func (m *memArticles) ExistsBySourceURL(_ context.Context, url string) (bool, error) {
	return m.stored[url], nil
}

func (m *memArticles) SourceURLSet(_ context.Context, urls []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, u := range urls {
		if m.stored[u] {
			out[u] = true
		}
	}
	return out, nil
}

func (m *memArticles) Count(context.Context) (int64, error) {
	return int64(len(m.created)), nil
}

// memRuns is an in-memory GenerationRunRepository capturing run lifecycle.
type memRuns struct {
	runs     []*entity.GenerationRun
	finishes map[string]repository.RunResult
}

func newMemRuns() *memRuns {
	return &memRuns{finishes: make(map[string]repository.RunResult)}
}

func (m *memRuns) Create(_ context.Context, run *entity.GenerationRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRuns) Finish(_ context.Context, id string, result repository.RunResult) error {
	if _, done := m.finishes[id]; done {
		return entity.ErrRunAlreadyFinished
	}
	m.finishes[id] = result
	return nil
}

func (m *memRuns) Get(context.Context, string) (*entity.GenerationRun, error) {
	return nil, entity.ErrRunNotFound
}

func (m *memRuns) ListPaginated(context.Context, int, int) ([]*entity.GenerationRun, error) {
	return nil, nil
}

func (m *memRuns) Count(context.Context) (int64, error) { return int64(len(m.runs)), nil }

func (m *memRuns) CountByStatus(context.Context, entity.RunStatus) (int64, error) { return 0, nil }

func (m *memRuns) LatestStarted(context.Context) (*entity.GenerationRun, error) {
	return nil, entity.ErrRunNotFound
}

func (m *memRuns) Delete(context.Context, string) error { return nil }

func (m *memRuns) DeleteAll(context.Context) (int64, error) { return 0, nil }

func (m *memRuns) lastFinish(t *testing.T) repository.RunResult {
	t.Helper()
	require.NotEmpty(t, m.runs)
	result, ok := m.finishes[m.runs[len(m.runs)-1].ID]
	require.True(t, ok, "run was never finalized")
	return result
}

func testCandidate() Candidate {
	return Candidate{
		URL:        "https://news.example.com/btc-rally",
		SourceName: "Example News",
	}
}

func testScraped() *ScrapedContent {
	return &ScrapedContent{
		Title:        "BTC rallies past milestone",
		Body:         "The market moved sharply today.",
		HeroImageURL: "https://news.example.com/hero.jpg",
		Author:       "Example News",
		PublishedAt:  time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC),
		SourceURL:    "https://news.example.com/btc-rally",
	}
}

func testRewrite() *Rewrite {
	return &Rewrite{
		Title:       "Bitcoin vượt mốc quan trọng",
		ContentHTML: "<p>Thị trường biến động mạnh hôm nay.</p>",
	}
}

func newTestService(cands CandidateSource, sc PageScraper, rw Rewriter, arts *memArticles, runs *memRuns) *Service {
	cfg := DefaultConfig()
	cfg.BatchCooldown = time.Millisecond
	svc := NewService(cands, sc, rw, arts, runs, cfg)
	svc.now = func() time.Time { return time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC) }
	svc.pick = func(int) int { return 0 }
	return svc
}

func TestGenerateOne_Success(t *testing.T) {
	arts := &memArticles{stored: map[string]bool{}}
	runs := newMemRuns()
	svc := newTestService(
		&stubCandidates{cands: []Candidate{testCandidate()}},
		&stubScraper{content: testScraped()},
		&stubRewriter{rw: testRewrite()},
		arts, runs,
	)

	got, err := svc.GenerateOne(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Len(t, arts.created, 1)
	a := arts.created[0]
	assert.Equal(t, "Bitcoin vượt mốc quan trọng", a.Title)
	assert.Contains(t, a.Slug, "bitcoin-vuot-moc-quan-trong")
	assert.Equal(t, "Thị trường biến động mạnh hôm nay.", a.Summary)
	assert.Contains(t, a.Content, "<p>Thị trường biến động mạnh hôm nay.</p>")
	assert.Contains(t, a.Content, `href="https://news.example.com/btc-rally"`)
	assert.Contains(t, a.Content, "Bài viết này được tổng hợp và dịch")
	assert.Equal(t, "https://news.example.com/hero.jpg", a.HeroImage)
	assert.Equal(t, "Bitcoin", a.Tags)
	assert.Equal(t, "Tường An", a.Author)
	assert.Equal(t, "Example News", a.Source)
	assert.Equal(t, "https://news.example.com/btc-rally", a.SourceURL)
	assert.True(t, a.IsPublished)
	assert.Equal(t, testScraped().PublishedAt, a.Date)

	result := runs.lastFinish(t)
	assert.Equal(t, entity.RunStatusSuccess, result.Status)
	assert.Equal(t, 1, result.ArticlesCreated)
	assert.Empty(t, result.ErrorMessage)
}

func TestGenerateOne_FallbackHeroImage(t *testing.T) {
	scraped := testScraped()
	scraped.HeroImageURL = ""

	arts := &memArticles{stored: map[string]bool{}}
	svc := newTestService(
		&stubCandidates{cands: []Candidate{testCandidate()}},
		&stubScraper{content: scraped},
		&stubRewriter{rw: testRewrite()},
		arts, newMemRuns(),
	)

	_, err := svc.GenerateOne(context.Background())
	require.NoError(t, err)

	require.Len(t, arts.created, 1)
	assert.Contains(t, arts.created[0].HeroImage, "placehold.co")
}

func TestGenerateOne_GuardRejectsConcurrentRun(t *testing.T) {
	runs := newMemRuns()
	svc := newTestService(
		&stubCandidates{}, &stubScraper{}, &stubRewriter{},
		&memArticles{stored: map[string]bool{}}, runs,
	)
	svc.inFlight.Store(true)

	_, err := svc.GenerateOne(context.Background())
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	assert.Empty(t, runs.runs, "a rejected attempt must not create a run")
}

func TestGenerateOne_NothingNew(t *testing.T) {
	cand := testCandidate()
	latest := &entity.Article{ID: "existing", Title: "old"}

	arts := &memArticles{
		stored: map[string]bool{cand.URL: true},
		latest: latest,
	}
	runs := newMemRuns()
	scraper := &stubScraper{}
	svc := newTestService(
		&stubCandidates{cands: []Candidate{cand}},
		scraper,
		&stubRewriter{},
		arts, runs,
	)

	got, err := svc.GenerateOne(context.Background())
	require.NoError(t, err)
	assert.Equal(t, latest, got)
	assert.Empty(t, scraper.urls, "no scrape when nothing is new")
	assert.Empty(t, arts.created)

	result := runs.lastFinish(t)
	assert.Equal(t, entity.RunStatusSuccess, result.Status)
	assert.Equal(t, 0, result.ArticlesCreated)
}

func TestGenerateOne_NothingNewEmptyTable(t *testing.T) {
	cand := testCandidate()
	runs := newMemRuns()
	svc := newTestService(
		&stubCandidates{cands: []Candidate{cand}},
		&stubScraper{},
		&stubRewriter{},
		&memArticles{stored: map[string]bool{cand.URL: true}}, runs,
	)

	got, err := svc.GenerateOne(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, entity.RunStatusSuccess, runs.lastFinish(t).Status)
}

func TestGenerateOne_ScrapeFailure(t *testing.T) {
	runs := newMemRuns()
	svc := newTestService(
		&stubCandidates{cands: []Candidate{testCandidate()}},
		&stubScraper{err: errors.New("status 403")},
		&stubRewriter{},
		&memArticles{stored: map[string]bool{}}, runs,
	)

	_, err := svc.GenerateOne(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentExtraction)

	result := runs.lastFinish(t)
	assert.Equal(t, entity.RunStatusFailed, result.Status)
	assert.Equal(t, 0, result.ArticlesCreated)
	assert.Contains(t, result.ErrorMessage, "status 403")
}

type diagErr struct{ detail string }

func (e *diagErr) Error() string      { return "unparsable backend response" }
func (e *diagErr) Diagnostic() string { return e.detail }

func TestGenerateOne_RewriteFailureKeepsDiagnostic(t *testing.T) {
	runs := newMemRuns()
	svc := newTestService(
		&stubCandidates{cands: []Candidate{testCandidate()}},
		&stubScraper{content: testScraped()},
		&stubRewriter{err: &diagErr{detail: "raw backend response:\n```not json```"}},
		&memArticles{stored: map[string]bool{}}, runs,
	)

	_, err := svc.GenerateOne(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRewriteFailed)

	result := runs.lastFinish(t)
	assert.Equal(t, entity.RunStatusFailed, result.Status)
	assert.Contains(t, result.ErrorDetails, "```not json```")
}

func TestGenerateOne_DuplicateCreate(t *testing.T) {
	runs := newMemRuns()
	svc := newTestService(
		&stubCandidates{cands: []Candidate{testCandidate()}},
		&stubScraper{content: testScraped()},
		&stubRewriter{rw: testRewrite()},
		&memArticles{stored: map[string]bool{}, createErr: entity.ErrDuplicateSourceURL}, runs,
	)

	_, err := svc.GenerateOne(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDuplicateSourceURL)
	assert.Equal(t, entity.RunStatusFailed, runs.lastFinish(t).Status)
}

func TestGenerateOne_PanicIsFinalized(t *testing.T) {
	runs := newMemRuns()
	svc := newTestService(
		&stubCandidates{cands: []Candidate{testCandidate()}},
		&stubScraper{panics: true},
		&stubRewriter{},
		&memArticles{stored: map[string]bool{}}, runs,
	)

	require.Panics(t, func() {
		_, _ = svc.GenerateOne(context.Background())
	})

	result := runs.lastFinish(t)
	assert.Equal(t, entity.RunStatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "panic")
	assert.NotEmpty(t, result.ErrorDetails, "stack trace captured")
	assert.False(t, svc.inFlight.Load(), "guard released after panic")
}

func TestGenerateMany_IsolatesFailures(t *testing.T) {
	rewriter := &stubRewriter{
		rw:     testRewrite(),
		err:    fmt.Errorf("%w: backend timeout", ErrRewriteFailed),
		failOn: 2,
	}
	arts := &memArticles{stored: map[string]bool{}}
	svc := newTestService(
		&stubCandidates{cands: []Candidate{testCandidate()}},
		&stubScraper{content: testScraped()},
		rewriter,
		arts, newMemRuns(),
	)

	result, err := svc.GenerateMany(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "article 2/3")
}

func TestGenerateMany_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(
		&stubCandidates{}, &stubScraper{}, &stubRewriter{},
		&memArticles{stored: map[string]bool{}}, newMemRuns(),
	)

	result, err := svc.GenerateMany(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}
