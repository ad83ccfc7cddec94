package quiz

import (
	"context"
	"errors"
	"strings"
	"time"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/store"
)

const DefaultArchiveReason = "Missing media or unanswerable"

type CatalogStore interface {
	Question(ctx context.Context, id int64) (models.Question, error)
	ClassifierCategories(ctx context.Context) ([]models.CategoryCount, error)
	// SetArchived toggles the archive fields; ErrNotFound for an unknown id.
	SetArchived(ctx context.Context, id int64, archived bool, reason *string, at *time.Time) error
	ArchivedQuestions(ctx context.Context) ([]models.Question, error)
}

// Catalog exposes the question table and the archive toggle.
type Catalog struct {
	store    CatalogStore
	selector *Selector
	now      func() time.Time
}

func NewCatalog(catalog CatalogStore, selector *Selector) *Catalog {
	return &Catalog{store: catalog, selector: selector, now: func() time.Time { return time.Now().UTC() }}
}

func (c *Catalog) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	items, err := c.store.ClassifierCategories(ctx)
	if err != nil {
		return nil, services.WrapError(err, "categories")
	}
	return items, nil
}

func (c *Catalog) Question(ctx context.Context, id int64) (models.Question, error) {
	q, err := c.store.Question(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Question{}, services.ErrNotFound("Question not found")
	}
	if err != nil {
		return models.Question{}, services.WrapError(err, "question")
	}
	return q, nil
}

// Archive hides a question from selection. The count cache is purged so the change is immediate.
func (c *Catalog) Archive(ctx context.Context, id int64, reason string) error {
	if id <= 0 {
		return services.ErrBadRequest("Question ID is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultArchiveReason
	}
	now := c.now()
	return c.toggle(ctx, id, true, &reason, &now)
}

// Unarchive restores a question and clears the reason and timestamp.
func (c *Catalog) Unarchive(ctx context.Context, id int64) error {
	if id <= 0 {
		return services.ErrBadRequest("Question ID is required")
	}
	return c.toggle(ctx, id, false, nil, nil)
}

func (c *Catalog) Archived(ctx context.Context) ([]models.Question, error) {
	items, err := c.store.ArchivedQuestions(ctx)
	if err != nil {
		return nil, services.WrapError(err, "archived questions")
	}
	return items, nil
}

func (c *Catalog) toggle(ctx context.Context, id int64, archived bool, reason *string, at *time.Time) error {
	err := c.store.SetArchived(ctx, id, archived, reason, at)
	if errors.Is(err, store.ErrNotFound) {
		return services.ErrNotFound("Question not found")
	}
	if err != nil {
		return services.WrapError(err, "archive question")
	}
	c.selector.Invalidate(ctx)
	return nil
}
