// Package postgres implements the repository interfaces on PostgreSQL via
// database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const articleColumns = `id, title, slug, summary, content, hero_image, tags, author, source, source_url, is_published, date, created_at, updated_at`

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (id, title, slug, summary, content, hero_image, tags, author, source, source_url, is_published, date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := repo.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Slug, article.Summary,
		article.Content, article.HeroImage, article.Tags, article.Author,
		article.Source, article.SourceURL, article.IsPublished,
		article.Date, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", mapUniqueViolation(err))
	}
	return nil
}

// mapUniqueViolation translates unique constraint violations into the
// domain sentinels so the orchestrator can tell a dedup race apart from an
// infrastructure failure.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "slug") {
		return entity.ErrDuplicateSlug
	}
	return entity.ErrDuplicateSourceURL
}

func (repo *ArticleRepo) Get(ctx context.Context, id string) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	article, err := repo.scanOne(repo.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetBySlug(ctx context.Context, slug string) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE slug = $1
LIMIT 1`
	article, err := repo.scanOne(repo.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("GetBySlug: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) List(ctx context.Context) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
ORDER BY date DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 100)
	for rows.Next() {
		var article entity.Article
		if err := scanArticle(rows, &article); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles SET
       title        = $1,
       slug         = $2,
       summary      = $3,
       content      = $4,
       hero_image   = $5,
       tags         = $6,
       author       = $7,
       source       = $8,
       source_url   = $9,
       is_published = $10,
       date         = $11,
       updated_at   = $12
WHERE id = $13`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Slug, article.Summary, article.Content,
		article.HeroImage, article.Tags, article.Author, article.Source,
		article.SourceURL, article.IsPublished, article.Date,
		article.UpdatedAt, article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", mapUniqueViolation(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrArticleNotFound
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrArticleNotFound
	}
	return nil
}

func (repo *ArticleRepo) Latest(ctx context.Context) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
ORDER BY created_at DESC
LIMIT 1`
	article, err := repo.scanOne(repo.db.QueryRowContext(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) ExistsBySourceURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM articles WHERE source_url = $1)`
	var existsFlag bool
	err := repo.db.QueryRowContext(ctx, query, url).Scan(&existsFlag)
	if err != nil {
		return false, fmt.Errorf("ExistsBySourceURL: %w", err)
	}
	return existsFlag, nil
}

// SourceURLSet performs a batch existence check, avoiding an N+1 query per
// candidate during dedup.
func (repo *ArticleRepo) SourceURLSet(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT source_url FROM articles WHERE source_url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, urls)
	if err != nil {
		return nil, fmt.Errorf("SourceURLSet: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("SourceURLSet: Scan: %w", err)
		}
		result[url] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SourceURLSet: rows.Err: %w", err)
	}

	return result, nil
}

func (repo *ArticleRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles`
	var count int64
	err := repo.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (repo *ArticleRepo) scanOne(row rowScanner) (*entity.Article, error) {
	var article entity.Article
	err := scanArticle(row, &article)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func scanArticle(row rowScanner, article *entity.Article) error {
	return row.Scan(
		&article.ID, &article.Title, &article.Slug, &article.Summary,
		&article.Content, &article.HeroImage, &article.Tags, &article.Author,
		&article.Source, &article.SourceURL, &article.IsPublished,
		&article.Date, &article.CreatedAt, &article.UpdatedAt,
	)
}
