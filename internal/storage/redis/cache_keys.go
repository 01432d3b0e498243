package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recruit-matcher/internal/models"
)

const (
	SuggestionCacheTTL   = 10 * time.Minute
	LastRunTTL           = 7 * 24 * time.Hour
	RateLimitWindowTTL   = 1 * time.Minute
	suggestionKeyPattern = "suggest:*"
)

// SuggestionKey namespaces a caller key such as "candidate:42".
func SuggestionKey(key string) string {
	return "suggest:" + key
}

func LastRunKey() string {
	return "reconcile:last"
}

func ReconcileLockKey() string {
	return "lock:reconcile"
}

func RateLimitKey(userID int64) string {
	return fmt.Sprintf("ratelimit:reviewer:%d", userID)
}

func (c *Cache) GetSuggestions(ctx context.Context, key string) ([]models.Suggestion, bool, error) {
	var suggestions []models.Suggestion
	err := c.Get(ctx, SuggestionKey(key), &suggestions)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return suggestions, true, nil
}

func (c *Cache) SetSuggestions(ctx context.Context, key string, suggestions []models.Suggestion) error {
	return c.Set(ctx, SuggestionKey(key), suggestions, c.suggestionTTL)
}

// InvalidateSuggestions drops every cached suggestion list.
func (c *Cache) InvalidateSuggestions(ctx context.Context) error {
	keys, err := c.Keys(ctx, suggestionKeyPattern)
	if err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}

func (c *Cache) SaveSummary(ctx context.Context, summary *models.ReconcileSummary) error {
	return c.Set(ctx, LastRunKey(), summary, LastRunTTL)
}

// LastSummary returns nil when no run has been recorded.
func (c *Cache) LastSummary(ctx context.Context) (*models.ReconcileSummary, error) {
	var summary models.ReconcileSummary
	err := c.Get(ctx, LastRunKey(), &summary)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Cache) IncrementReviewerRateLimit(ctx context.Context, userID int64) (int64, error) {
	return c.IncrementWithExpiry(ctx, RateLimitKey(userID), RateLimitWindowTTL)
}
