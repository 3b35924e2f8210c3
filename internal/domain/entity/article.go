// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Article,
// GenerationRun and SchedulerSettings, along with their validation rules and
// domain-specific errors.
package entity

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors surfaced by persistence adapters so callers can tell a
// uniqueness race apart from scrape/rewrite failures.
var (
	// ErrDuplicateSourceURL indicates an article with the same source URL
	// already exists. The source_url uniqueness constraint is the last-line
	// dedup guard against re-publishing the same external story.
	ErrDuplicateSourceURL = errors.New("article with this source URL already exists")

	// ErrDuplicateSlug indicates an article with the same slug already exists.
	ErrDuplicateSlug = errors.New("article with this slug already exists")

	// ErrArticleNotFound indicates the requested article does not exist.
	ErrArticleNotFound = errors.New("article not found")
)

// ValidationError describes a single invalid entity field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Article represents a published news article in the system.
// Articles are created exclusively by the generation pipeline after a
// successful rewrite; editorial updates happen outside the pipeline.
type Article struct {
	ID          string
	Title       string
	Slug        string
	Summary     string
	Content     string
	HeroImage   string
	Tags        string
	Author      string
	Source      string
	SourceURL   string
	IsPublished bool
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the invariants the pipeline relies on before persisting.
func (a *Article) Validate() error {
	if a.Title == "" {
		return &ValidationError{Field: "Title", Message: "must not be empty"}
	}
	if a.Slug == "" {
		return &ValidationError{Field: "Slug", Message: "must not be empty"}
	}
	if a.Content == "" {
		return &ValidationError{Field: "Content", Message: "must not be empty"}
	}
	if a.SourceURL == "" {
		return &ValidationError{Field: "SourceURL", Message: "must not be empty"}
	}
	return nil
}
