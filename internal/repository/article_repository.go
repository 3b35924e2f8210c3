package repository

import (
	"context"

	"cryptopress/internal/domain/entity"
)

// ArticleRepository defines persistence operations for published articles.
// Implementations must enforce uniqueness on source_url and slug and map
// constraint violations to entity.ErrDuplicateSourceURL / ErrDuplicateSlug.
type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	Get(ctx context.Context, id string) (*entity.Article, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Article, error)
	List(ctx context.Context) ([]*entity.Article, error)
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id string) error
	// Latest returns the most recently stored article, or
	// entity.ErrArticleNotFound when the table is empty. Used by the
	// orchestrator for the explicit "nothing new" outcome.
	Latest(ctx context.Context) (*entity.Article, error)
	ExistsBySourceURL(ctx context.Context, url string) (bool, error)
	// SourceURLSet performs a batch existence check for the given URLs and
	// returns the subset that is already stored, keyed by URL.
	SourceURLSet(ctx context.Context, urls []string) (map[string]bool, error)
	Count(ctx context.Context) (int64, error)
}
