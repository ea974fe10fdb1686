package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popcornhour/internal/config"
	"popcornhour/internal/microservices/http-api/models"
)

// concurrencyStacks returns the backends the race tests run against.
// sqlite is pinned to a single connection, so there the goroutines are
// serialised by the pool and only the sequential outcome is checked. With
// TEST_DATABASE_URL pointing at a postgres database the statements really
// interleave and the lost-insert retry is exercised end to end.
func concurrencyStacks(t *testing.T) map[string]func(t *testing.T) *stack {
	stacks := map[string]func(t *testing.T) *stack{"sqlite": newStack}
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		stacks["postgres"] = func(t *testing.T) *stack {
			return newStackOn(t, &config.Config{
				DatabaseDriver: "postgres",
				DatabaseURL:    url,
				DBMaxOpenConns: 20,
				DBMaxIdleConns: 5,
			})
		}
	} else {
		t.Log("TEST_DATABASE_URL not set; postgres variant skipped")
	}
	return stacks
}

// uniqueName keeps runs against a shared postgres database apart.
func uniqueName(prefix string) string {
	return prefix + uuid.NewString()[:8]
}

// TestConcurrentRatings fires simultaneous ratings from one user at one movie.
// Exactly one row must survive and every request must succeed.
func TestConcurrentRatings(t *testing.T) {
	for name, build := range concurrencyStacks(t) {
		t.Run(name, func(t *testing.T) {
			s := build(t)
			ctx := context.Background()

			user, mod := uniqueName("u"), uniqueName("m")
			_, err := s.auth.Register(ctx, RegisterInput{Username: user, Email: user + "@x.com", Password: "secret1", ConfirmPassword: "secret1"})
			require.NoError(t, err)
			sess, err := s.auth.Login(ctx, user+"@x.com", "secret1")
			require.NoError(t, err)

			_, err = s.auth.Register(ctx, RegisterInput{Username: mod, Email: mod + "@x.com", Password: "secret1", ConfirmPassword: "secret1"})
			require.NoError(t, err)
			movie, err := s.catalog.AddMovie(ctx, s.promote(t, mod+"@x.com"), validMovieForm())
			require.NoError(t, err)

			const workers = 10
			var wg sync.WaitGroup
			var failures int64
			start := make(chan struct{})
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(score int) {
					defer wg.Done()
					<-start
					if _, err := s.catalog.RateMovie(ctx, &sess.Principal, movie.ID, score); err != nil {
						atomic.AddInt64(&failures, 1)
						t.Logf("rating %d failed: %v", score, err)
					}
				}(i%5 + 1)
			}
			close(start)
			wg.Wait()

			assert.Zero(t, atomic.LoadInt64(&failures))
			var count int64
			require.NoError(t, s.db.Model(&models.Rating{}).Where("movie_id = ?", movie.ID).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})
	}
}

// TestConcurrentRegistrations races the same username; only one account may exist.
func TestConcurrentRegistrations(t *testing.T) {
	for name, build := range concurrencyStacks(t) {
		t.Run(name, func(t *testing.T) {
			s := build(t)
			ctx := context.Background()
			username := uniqueName("r")

			const workers = 8
			var wg sync.WaitGroup
			var successes int64
			start := make(chan struct{})
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, err := s.auth.Register(ctx, RegisterInput{
						Username:        username,
						Email:           fmt.Sprintf("%s-%d@x.com", username, i),
						Password:        "secret1",
						ConfirmPassword: "secret1",
					})
					if err == nil {
						atomic.AddInt64(&successes, 1)
					}
				}(i)
			}
			close(start)
			wg.Wait()

			assert.Equal(t, int64(1), atomic.LoadInt64(&successes))
			var count int64
			s.db.Model(&models.User{}).Where("username = ?", username).Count(&count)
			assert.Equal(t, int64(1), count)
		})
	}
}
