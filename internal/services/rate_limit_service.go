package services

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Rate limit scopes
const (
	RateScopeDelayReport = "delay_report"
	RateScopeAuth        = "auth"
)

// RateLimitRule allows Max requests per Window for one scope
type RateLimitRule struct {
	Max    int
	Window time.Duration
}

// RateLimitConfig holds the per-scope rules. A scope without a rule, or with
// Max <= 0, is not limited.
type RateLimitConfig map[string]RateLimitRule

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RateScopeDelayReport: {Max: 10, Window: time.Hour}, // 10 reports per hour
		RateScopeAuth:        {Max: 20, Window: 15 * time.Minute},
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Scope      string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// RateLimitService counts requests per scope and client in fixed windows.
// Counters live in process memory, so limits apply per instance.
type RateLimitService struct {
	rules    RateLimitConfig
	counters *gocache.Cache
	now      func() time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(rules RateLimitConfig) *RateLimitService {
	var longest time.Duration
	for _, rule := range rules {
		if rule.Window > longest {
			longest = rule.Window
		}
	}
	cleanup := longest
	if cleanup <= 0 {
		cleanup = time.Minute
	}

	return &RateLimitService{
		rules:    rules,
		counters: gocache.New(longest, cleanup),
		now:      time.Now,
	}
}

// Allow records one request by identifier in scope and returns a
// *RateLimitError once the scope's limit for the current window is exceeded.
func (s *RateLimitService) Allow(scope, identifier string) error {
	rule, ok := s.rules[scope]
	if !ok || rule.Max <= 0 || identifier == "" {
		return nil
	}

	key := scope + ":" + identifier

	// Add fails when the window is already open
	_ = s.counters.Add(key, 0, rule.Window)
	count, err := s.counters.IncrementInt(key, 1)
	if err != nil {
		// window expired between Add and IncrementInt
		s.counters.Set(key, 1, rule.Window)
		count = 1
	}

	if count <= rule.Max {
		return nil
	}

	retryAfter := s.now().Add(rule.Window)
	if _, expiresAt, found := s.counters.GetWithExpiration(key); found && !expiresAt.IsZero() {
		retryAfter = expiresAt
	}
	return &RateLimitError{
		Message:    fmt.Sprintf("Too many requests. Please try again after %s", retryAfter.UTC().Format("15:04:05")),
		RetryAfter: retryAfter,
		Scope:      scope,
	}
}

// Remaining returns how many requests identifier may still make in the
// current window, or -1 when the scope is not limited
func (s *RateLimitService) Remaining(scope, identifier string) int {
	rule, ok := s.rules[scope]
	if !ok || rule.Max <= 0 {
		return -1
	}

	v, found := s.counters.Get(scope + ":" + identifier)
	if !found {
		return rule.Max
	}
	if left := rule.Max - v.(int); left > 0 {
		return left
	}
	return 0
}

// Reset clears the counter for identifier in scope
func (s *RateLimitService) Reset(scope, identifier string) {
	s.counters.Delete(scope + ":" + identifier)
}
