package scan

import (
	"context"
	"sort"
	"sync"

	"github.com/wardspan/azure-recon/internal/output"
)

// DefaultMaxConcurrency bounds parallel in-flight operations per collection
// to avoid tripping upstream rate limits.
const DefaultMaxConcurrency = 5

// AggregateOutcome is the partial-failure result of one fan-out collection.
// Succeeded and FailedScopes together cover the input scope set exactly once;
// scopes skipped by cancellation appear in neither.
type AggregateOutcome[T any] struct {
	Succeeded    map[Scope]T
	FailedScopes map[Scope]string
}

// Warnings renders failed scopes as log lines, sorted for determinism.
func (o AggregateOutcome[T]) Warnings(operation string) []string {
	out := make([]string, 0, len(o.FailedScopes))
	for _, scope := range sortedScopes(o.FailedScopes) {
		out = append(out, operation+" "+string(scope)+": "+o.FailedScopes[scope])
	}
	return out
}

// Merged returns all successful results flattened in scope order.
func Merged[T any](o AggregateOutcome[[]T]) []T {
	out := make([]T, 0)
	for _, scope := range sortedScopes(o.Succeeded) {
		out = append(out, o.Succeeded[scope]...)
	}
	return out
}

// Collect runs op once per scope with at most maxConcurrency operations in
// flight. A failing scope is logged and recorded in FailedScopes without
// cancelling its siblings; nothing is retried here. Collect returns once
// every scope has succeeded, failed, or been skipped by ctx cancellation.
func Collect[T any](ctx context.Context, scopes []Scope, maxConcurrency int, op func(context.Context, Scope) (T, error)) AggregateOutcome[T] {
	outcome := AggregateOutcome[T]{
		Succeeded:    make(map[Scope]T, len(scopes)),
		FailedScopes: make(map[Scope]string),
	}
	if len(scopes) == 0 {
		return outcome
	}
	if maxConcurrency <= 0 {
		maxConcurrency = len(scopes)
	}

	type result struct {
		scope   Scope
		value   T
		err     error
		skipped bool
	}

	resCh := make(chan result, len(scopes))
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for _, scope := range scopes {
		scope := scope
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				resCh <- result{scope: scope, skipped: true}
				return
			}
			value, err := op(ctx, scope)
			if err != nil && ctx.Err() != nil {
				// Caller-level abort, not a scope failure.
				resCh <- result{scope: scope, skipped: true}
				return
			}
			resCh <- result{scope: scope, value: value, err: err}
		}()
	}

	wg.Wait()
	close(resCh)

	for r := range resCh {
		switch {
		case r.skipped:
		case r.err != nil:
			output.Warn("scope collection failed", "scope", string(r.scope), "error", r.err)
			outcome.FailedScopes[r.scope] = r.err.Error()
		default:
			outcome.Succeeded[r.scope] = r.value
		}
	}
	return outcome
}

func sortedScopes[T any](m map[Scope]T) []Scope {
	scopes := make([]Scope, 0, len(m))
	for scope := range m {
		scopes = append(scopes, scope)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i] < scopes[j] })
	return scopes
}
