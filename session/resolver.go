package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/careerverse/backend/config"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
)

// Outcome describes how a role was obtained
type Outcome string

const (
	OutcomeResolved    Outcome = "resolved"
	OutcomeDefaulted   Outcome = "defaulted"
	OutcomeUnavailable Outcome = "unavailable"
)

// Identity is the authenticated principal a role is resolved for
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// RetryPolicy bounds how long a missing role is polled for
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy polls five times, one second apart
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 5, Delay: time.Second}

// PolicyFromConfig reads ROLE_RETRY_ATTEMPTS and ROLE_RETRY_DELAY
func PolicyFromConfig(cfg *config.Config) RetryPolicy {
	policy := RetryPolicy{MaxAttempts: cfg.RoleRetryAttempts, Delay: cfg.RoleRetryDelay}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return policy
}

// Result is the outcome of one resolution
type Result struct {
	Role      models.Role
	Outcome   Outcome
	Attempts  int
	Persisted bool
}

// Resolver determines the role of a signed-in identity.
//
// A profile written concurrently by registration may not be visible yet, so
// a missing role is polled for up to MaxAttempts. When none appears the
// identity is given the candidate role and a default profile is merge-written.
type Resolver struct {
	store  storage.ProfileStore
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

// NewResolver creates a resolver. A nil store yields OutcomeUnavailable.
func NewResolver(store storage.ProfileStore, policy RetryPolicy) *Resolver {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	return &Resolver{
		store:  store,
		policy: policy,
		sleep:  sleepContext,
		now:    time.Now,
	}
}

// Resolve fetches the identity's role, retrying and defaulting per the policy.
// The only error is ctx cancellation while waiting between attempts.
func (r *Resolver) Resolve(ctx context.Context, id Identity) (Result, error) {
	if r.store == nil {
		log.Printf("[Resolver] Profile store unavailable, no role for %s", id.UserID)
		return Result{Role: models.RoleNone, Outcome: OutcomeUnavailable}, nil
	}

	var existing *models.UserProfile
	attempts := 0
	for attempts < r.policy.MaxAttempts {
		if attempts > 0 {
			if err := r.sleep(ctx, r.policy.Delay); err != nil {
				return Result{Attempts: attempts}, err
			}
		}
		attempts++

		profile, err := r.store.GetProfile(ctx, id.UserID)
		switch {
		case err == nil:
			existing = profile
			if profile.HasRole() {
				return Result{
					Role:     models.ParseRole(string(profile.Role)),
					Outcome:  OutcomeResolved,
					Attempts: attempts,
				}, nil
			}
		case errors.Is(err, storage.ErrNotFound):
		default:
			log.Printf("[Resolver] Attempt %d for %s failed: %v", attempts, id.UserID, err)
		}
	}

	log.Printf("[Resolver] No role for %s after %d attempts, defaulting to candidate", id.UserID, attempts)

	defaults := &models.UserProfile{
		Role:      models.RoleCandidate,
		Email:     id.Email,
		Name:      id.Name,
		CreatedAt: r.now().UTC().Format(time.RFC3339),
	}
	if existing != nil && existing.CreatedAt != "" {
		defaults.CreatedAt = existing.CreatedAt
	}

	result := Result{Role: models.RoleCandidate, Outcome: OutcomeDefaulted, Attempts: attempts}
	if err := r.store.SaveProfile(ctx, id.UserID, defaults); err != nil {
		log.Printf("[Resolver] Failed to write default profile for %s: %v", id.UserID, err)
		return result, nil
	}
	result.Persisted = true
	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
