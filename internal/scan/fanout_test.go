package scan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_AllSucceed(t *testing.T) {
	scopes := []Scope{"sub-a", "sub-b", "sub-c"}

	outcome := Collect(context.Background(), scopes, 2, func(_ context.Context, scope Scope) (string, error) {
		return "data-" + string(scope), nil
	})

	require.Len(t, outcome.Succeeded, 3)
	assert.Empty(t, outcome.FailedScopes)
	assert.Equal(t, "data-sub-b", outcome.Succeeded["sub-b"])
}

func TestCollect_FailureIsolatedPerScope(t *testing.T) {
	scopes := []Scope{"sub-a", "sub-b", "sub-c"}

	outcome := Collect(context.Background(), scopes, 2, func(_ context.Context, scope Scope) ([]int, error) {
		if scope == "sub-b" {
			return nil, errors.New("403 forbidden")
		}
		return []int{1}, nil
	})

	require.Len(t, outcome.Succeeded, 2)
	require.Len(t, outcome.FailedScopes, 1)
	assert.Contains(t, outcome.FailedScopes["sub-b"], "403")
	assert.Contains(t, outcome.Succeeded, Scope("sub-a"))
	assert.Contains(t, outcome.Succeeded, Scope("sub-c"))
}

func TestCollect_ScopesPartitionedExactlyOnce(t *testing.T) {
	scopes := []Scope{"s1", "s2", "s3", "s4", "s5"}

	outcome := Collect(context.Background(), scopes, 3, func(_ context.Context, scope Scope) (int, error) {
		if scope == "s2" || scope == "s4" {
			return 0, errors.New("boom")
		}
		return 1, nil
	})

	assert.Equal(t, len(scopes), len(outcome.Succeeded)+len(outcome.FailedScopes))
	for _, scope := range scopes {
		_, succeeded := outcome.Succeeded[scope]
		_, failed := outcome.FailedScopes[scope]
		assert.True(t, succeeded != failed, "scope %s must appear exactly once", scope)
	}
}

func TestCollect_RespectsConcurrencyBound(t *testing.T) {
	const bound = 2
	var inFlight, peak int64
	var mu sync.Mutex

	scopes := []Scope{"s1", "s2", "s3", "s4", "s5", "s6"}
	Collect(context.Background(), scopes, bound, func(_ context.Context, _ Scope) (struct{}, error) {
		current := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		defer atomic.AddInt64(&inFlight, -1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak, int64(bound))
}

func TestCollect_EmptyScopes(t *testing.T) {
	outcome := Collect(context.Background(), nil, 5, func(_ context.Context, _ Scope) (int, error) {
		t.Fatal("op should not be called")
		return 0, nil
	})
	assert.Empty(t, outcome.Succeeded)
	assert.Empty(t, outcome.FailedScopes)
}

func TestCollect_CancelledScopesAreSkippedNotFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scopes := []Scope{"s1", "s2", "s3"}
	outcome := Collect(ctx, scopes, 1, func(ctx context.Context, _ Scope) (int, error) {
		return 0, ctx.Err()
	})

	// Cancellation is an abort, not a scope-level failure.
	assert.Empty(t, outcome.FailedScopes)
	assert.Empty(t, outcome.Succeeded)
}

func TestCollect_ZeroConcurrencyMeansUnbounded(t *testing.T) {
	scopes := []Scope{"s1", "s2", "s3"}
	outcome := Collect(context.Background(), scopes, 0, func(_ context.Context, scope Scope) (Scope, error) {
		return scope, nil
	})
	assert.Len(t, outcome.Succeeded, 3)
}

func TestAggregateOutcome_WarningsSorted(t *testing.T) {
	outcome := AggregateOutcome[int]{
		FailedScopes: map[Scope]string{
			"sub-c": "timeout",
			"sub-a": "forbidden",
		},
	}

	warnings := outcome.Warnings("nsg scan failed for")
	require.Len(t, warnings, 2)
	assert.Equal(t, "nsg scan failed for sub-a: forbidden", warnings[0])
	assert.Equal(t, "nsg scan failed for sub-c: timeout", warnings[1])
}

func TestMerged_FlattensInScopeOrder(t *testing.T) {
	outcome := AggregateOutcome[[]string]{
		Succeeded: map[Scope][]string{
			"sub-b": {"b1", "b2"},
			"sub-a": {"a1"},
		},
	}
	assert.Equal(t, []string{"a1", "b1", "b2"}, Merged(outcome))
}
