// Package generation provides HTTP handlers for the generation triggers:
// the admin one-shot endpoint and the cron-authenticated batch endpoint.
package generation

import (
	"time"

	"cryptopress/internal/domain/entity"
)

// ArticleDTO represents the JSON structure for a generated article.
type ArticleDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	HeroImage   string    `json:"heroImage,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Author      string    `json:"author"`
	Source      string    `json:"source,omitempty"`
	SourceURL   string    `json:"sourceUrl"`
	IsPublished bool      `json:"isPublished"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toArticleDTO(a *entity.Article) ArticleDTO {
	return ArticleDTO{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Summary:     a.Summary,
		HeroImage:   a.HeroImage,
		Tags:        a.Tags,
		Author:      a.Author,
		Source:      a.Source,
		SourceURL:   a.SourceURL,
		IsPublished: a.IsPublished,
		Date:        a.Date,
		CreatedAt:   a.CreatedAt,
	}
}
