package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerverse/backend/auth"
	"github.com/careerverse/backend/config"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
)

// roleAfterStore reports no role until the given read, then the stored profile
type roleAfterStore struct {
	*storage.MemoryStore
	roleOnRead int
	reads      int32
	fail       bool
}

func (s *roleAfterStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	n := int(atomic.AddInt32(&s.reads, 1))
	if s.fail {
		return nil, errors.New("unavailable")
	}
	if s.roleOnRead > 0 && n >= s.roleOnRead {
		return &models.UserProfile{UserID: userID, Role: models.RoleRecruiter}, nil
	}
	return s.MemoryStore.GetProfile(ctx, userID)
}

func newTestResolver(store storage.ProfileStore) (*Resolver, *[]time.Duration) {
	r := NewResolver(store, RetryPolicy{MaxAttempts: 5, Delay: time.Second})
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	r.now = func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }
	return r, &slept
}

var jane = Identity{UserID: "u1", Email: "jane@example.com", Name: "Jane"}

func TestResolve_ExistingRole(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.SaveProfile(context.Background(), "u1", &models.UserProfile{Role: models.RoleAdmin}))
	r, slept := newTestResolver(mem)

	res, err := r.Resolve(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Role)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, *slept)
}

func TestResolve_RoleAppearsOnSecondAttempt(t *testing.T) {
	store := &roleAfterStore{MemoryStore: storage.NewMemoryStore(), roleOnRead: 2}
	r, slept := newTestResolver(store)

	res, err := r.Resolve(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRecruiter, res.Role)
	assert.Equal(t, 2, res.Attempts)
	assert.EqualValues(t, 2, store.reads, "polling stops once a role is found")
	assert.Len(t, *slept, 1)

	_, err = store.MemoryStore.GetProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, storage.ErrNotFound, "no default profile is written")
}

func TestResolve_DefaultsAfterMaxAttempts(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.SaveProfile(context.Background(), "u1", &models.UserProfile{
		Skills:    "Go, SQL",
		CreatedAt: "2023-05-01T00:00:00Z",
	}))
	store := &roleAfterStore{MemoryStore: mem}
	r, slept := newTestResolver(store)

	res, err := r.Resolve(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCandidate, res.Role)
	assert.Equal(t, OutcomeDefaulted, res.Outcome)
	assert.True(t, res.Persisted)
	assert.Equal(t, 5, res.Attempts)
	assert.EqualValues(t, 5, store.reads)
	assert.Len(t, *slept, 4, "sleeps only between attempts")

	profile, err := mem.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCandidate, profile.Role)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.Equal(t, "Go, SQL", profile.Skills, "existing fields survive the default write")
	assert.Equal(t, "2023-05-01T00:00:00Z", profile.CreatedAt)
}

func TestResolve_NewProfileGetsCreatedAt(t *testing.T) {
	mem := storage.NewMemoryStore()
	r, _ := newTestResolver(mem)

	_, err := r.Resolve(context.Background(), jane)
	require.NoError(t, err)

	profile, err := mem.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T10:30:00Z", profile.CreatedAt)
	assert.Equal(t, "Jane", profile.Name)
}

func TestResolve_FetchErrorsCountAsNoRole(t *testing.T) {
	store := &roleAfterStore{MemoryStore: storage.NewMemoryStore(), fail: true}
	r, _ := newTestResolver(store)

	res, err := r.Resolve(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDefaulted, res.Outcome)
	assert.Equal(t, models.RoleCandidate, res.Role)
}

func TestResolve_NilStore(t *testing.T) {
	r := NewResolver(nil, DefaultRetryPolicy)

	res, err := r.Resolve(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, res.Role)
	assert.Equal(t, OutcomeUnavailable, res.Outcome)
}

func TestResolve_ContextCancelled(t *testing.T) {
	r := NewResolver(storage.NewMemoryStore(), RetryPolicy{MaxAttempts: 5, Delay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Resolve(ctx, jane)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Attempts)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(&config.Config{RoleRetryAttempts: 0, RoleRetryDelay: -time.Second})
	assert.Equal(t, DefaultRetryPolicy.MaxAttempts, p.MaxAttempts)
	assert.Equal(t, time.Duration(0), p.Delay)
}

// blockingStore holds reads until released
type blockingStore struct {
	*storage.MemoryStore
	release chan struct{}
	reads   int32
}

func (s *blockingStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	atomic.AddInt32(&s.reads, 1)
	<-s.release
	return &models.UserProfile{Role: models.RoleCandidate}, nil
}

func TestManager_CoalescesConcurrentResolves(t *testing.T) {
	store := &blockingStore{MemoryStore: storage.NewMemoryStore(), release: make(chan struct{})}
	m := NewManager(NewResolver(store, DefaultRetryPolicy))

	var wg sync.WaitGroup
	sessions := make([]*Session, 8)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(context.Background(), jane)
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.EqualValues(t, 1, store.reads)
	for _, s := range sessions {
		assert.Equal(t, models.RoleCandidate, s.Role)
	}
}

// gatedStore holds reads until released and records the read context's error
type gatedStore struct {
	*storage.MemoryStore
	release chan struct{}
	reads   int32
	ctxErr  atomic.Value
}

func (s *gatedStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	atomic.AddInt32(&s.reads, 1)
	<-s.release
	s.ctxErr.Store(fmt.Sprint(ctx.Err()))
	return &models.UserProfile{Role: models.RoleRecruiter}, nil
}

func TestManager_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	store := &gatedStore{MemoryStore: storage.NewMemoryStore(), release: make(chan struct{})}
	m := NewManager(NewResolver(store, RetryPolicy{MaxAttempts: 1}))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := m.Get(firstCtx, jane)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&store.reads) == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		s   *Session
		err error
	}
	second := make(chan result, 1)
	go func() {
		s, err := m.Get(context.Background(), jane)
		second <- result{s, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(store.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, models.RoleRecruiter, got.s.Role)
	assert.Equal(t, OutcomeResolved, got.s.Outcome)
	assert.EqualValues(t, 1, atomic.LoadInt32(&store.reads))
	assert.Equal(t, "<nil>", store.ctxErr.Load(), "shared read is not cancelled")

	cached, err := m.Get(context.Background(), jane)
	require.NoError(t, err)
	assert.Same(t, got.s, cached)
}

func TestManager_InvalidateAndPeek(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.SaveProfile(context.Background(), "u1", &models.UserProfile{Role: models.RoleCandidate}))
	m := NewManager(NewResolver(mem, DefaultRetryPolicy))

	assert.True(t, m.Peek(jane).Loading)

	_, err := m.Get(context.Background(), jane)
	require.NoError(t, err)
	_, err = m.Get(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.ProfileReads, "second Get is served from the session")
	assert.False(t, m.Peek(jane).Loading)

	require.NoError(t, mem.SaveProfile(context.Background(), "u1", &models.UserProfile{Role: models.RoleRecruiter}))
	m.Invalidate("u1")

	s, err := m.Get(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleRecruiter, s.Role)
}

func TestManager_UnavailableIsNotCached(t *testing.T) {
	m := NewManager(NewResolver(nil, DefaultRetryPolicy))
	s, err := m.Get(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnavailable, s.Outcome)
	assert.True(t, m.Peek(jane).Loading)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.SaveProfile(context.Background(), "cand", &models.UserProfile{Role: models.RoleCandidate}))
	require.NoError(t, mem.SaveProfile(context.Background(), "rec", &models.UserProfile{Role: models.RoleRecruiter}))

	m := NewManager(NewResolver(mem, DefaultRetryPolicy))
	jwtSvc := auth.NewJWTService(&config.Config{JWTSecret: "s", JWTExpiryHours: 1})

	r := gin.New()
	r.GET("/requisitions", auth.AuthMiddleware(jwtSvc), RequireRole(m, models.RoleRecruiter, models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, string(FromContext(c).Role))
	})

	call := func(userID string) *httptest.ResponseRecorder {
		token, err := jwtSvc.GenerateToken(&models.Account{ID: userID})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/requisitions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	ok := call("rec")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "recruiter", ok.Body.String())

	denied := call("cand")
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Contains(t, denied.Body.String(), "Access Denied")
}
