package grader

import (
	"context"
	"log/slog"
	"sync"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// NameCache caches student profiles for the duration of one grading run.
// Failed lookups are cached as profiles without email or name, so each
// student is looked up at most once per run.
type NameCache struct {
	lookup ProfileLookup
	logger *slog.Logger

	mu       sync.Mutex
	profiles map[string]classroom.StudentProfile
}

// NewNameCache creates an empty cache backed by lookup.
func NewNameCache(lookup ProfileLookup, logger *slog.Logger) *NameCache {
	return &NameCache{
		lookup:   lookup,
		logger:   logging.OrDefault(logger),
		profiles: make(map[string]classroom.StudentProfile),
	}
}

// Profile returns the profile of userID, fetching it on first use.
func (c *NameCache) Profile(ctx context.Context, userID string) classroom.StudentProfile {
	if userID == "" {
		return classroom.StudentProfile{}
	}

	c.mu.Lock()
	p, ok := c.profiles[userID]
	c.mu.Unlock()
	if ok {
		return p
	}

	p = classroom.StudentProfile{UserID: userID}
	if fetched, err := c.lookup.GetStudentProfile(ctx, userID); err != nil {
		c.logger.Warn("Failed to get student profile", slog.String("user_id", userID), logging.Err(err))
	} else if fetched != nil {
		p = *fetched
	}
	if p.Email == "" {
		c.logger.Warn("No email address in student profile", slog.String("user_id", userID))
	}

	c.mu.Lock()
	c.profiles[userID] = p
	c.mu.Unlock()
	return p
}

// Email returns the email address of userID, or "" when unknown.
func (c *NameCache) Email(ctx context.Context, userID string) string {
	return c.Profile(ctx, userID).Email
}

// Name returns the display name of userID, "Student" when unknown.
func (c *NameCache) Name(ctx context.Context, userID string) string {
	return c.Profile(ctx, userID).DisplayName()
}

// Len returns the number of cached profiles.
func (c *NameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.profiles)
}
