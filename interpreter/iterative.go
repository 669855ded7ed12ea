package interpreter

import (
	"context"
	"sync"

	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/common/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultIterationBudget is the default bound on re-evaluation rounds (§5).
const DefaultIterationBudget = 10

// ErrNoResolver is returned by a Resolver to report that it has no binding
// for the requested attribute (distinct from the attribute resolving to an
// absent/null value, which is a successful resolution).
var ErrNoResolver = errors.New("interpreter: no resolver registered for attribute")

// ErrIterationBudgetExceeded is returned by IterativeEval when maxRounds
// rounds complete without reaching a concrete value or error.
var ErrIterationBudgetExceeded = errors.New("interpreter: iteration budget exceeded")

// ErrNoProgress is returned when a round's unresolved attribute set is
// unchanged from the prior round's, violating §8's unknown-monotonicity
// property and so unable to ever converge.
var ErrNoProgress = errors.New("interpreter: unknown attribute set made no progress")

// Resolver looks up the current value of an unknown attribute, per §6's
// "Unknown-attribute resolver: resolve(attribute) -> Result<Value>". It
// returns ErrNoResolver when it has no binding for attr at all, distinct
// from a resolution failure, which is reported as any other error. A
// Resolver is required to be effectively immutable for a single program
// execution (§5): the same attribute resolves to the same value or error
// across every round and every concurrent call within a round, since
// IterativeEval may invoke it more than once.
type Resolver interface {
	Resolve(ctx context.Context, attr types.Attribute) (types.Value, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, attr types.Attribute) (types.Value, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, attr types.Attribute) (types.Value, error) {
	return f(ctx, attr)
}

// IterativeEval implements §5's "iterative re-evaluation (async core)": a
// bounded fixed-point loop around Eval. Each round evaluates e to
// completion; if the result is Unknown(S), every attribute in S is resolved
// concurrently (via an errgroup.Group bounded by ctx, adapted from the
// teacher's use of errgroup for fan-out I/O) against resolver, the resolved
// key/value pairs are folded into the activation with WithResolved, and the
// next round begins. IterativeEval stops and returns:
//   - a concrete value or an Error result, with a nil error, on success;
//   - ErrNoResolver wrapped with the unresolved attribute, if resolver has no
//     binding for some attribute in S;
//   - ErrNoProgress, if S is identical to the previous round's set;
//   - ErrIterationBudgetExceeded, after maxRounds rounds (maxRounds <= 0
//     defaults to DefaultIterationBudget);
//   - ctx.Err() (wrapped), if ctx is cancelled or times out mid-round —
//     "a cancelled resolver causes the program's overall result to fail
//     with a cancellation error and no further rounds are scheduled" (§5).
func IterativeEval(ctx context.Context, e *ast.Expr, act *Activation, reg *Registry, resolver Resolver, maxRounds int) (types.Value, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultIterationBudget
	}
	cur := act
	var prev []types.Attribute
	for round := 0; round < maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return types.Value{}, errors.Wrap(err, "interpreter: cancelled before round")
		}
		result := Eval(e, cur, reg)
		if !result.IsUnknown() {
			return result, nil
		}
		attrs := result.UnknownOf().Attrs
		debugf("iterative eval round %d: %d unresolved attribute(s)", round, len(attrs))
		if sameAttrSet(attrs, prev) {
			return types.Value{}, ErrNoProgress
		}

		g, gctx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		resolved := make(map[string]types.Value, len(attrs))
		for _, attr := range attrs {
			attr := attr
			g.Go(func() error {
				v, err := resolver.Resolve(gctx, attr)
				if err != nil {
					if errors.Is(err, ErrNoResolver) {
						return errors.Wrapf(ErrNoResolver, "attribute %q", attr.String())
					}
					return err
				}
				mu.Lock()
				resolved[attr.String()] = v
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			if ctx.Err() != nil {
				return types.Value{}, errors.Wrap(ctx.Err(), "interpreter: cancelled resolving attributes")
			}
			return types.Value{}, err
		}

		cur = cur.WithResolved(resolved)
		prev = attrs
	}
	return types.Value{}, ErrIterationBudgetExceeded
}

// sameAttrSet reports whether a and b contain the same attributes
// (order-independent), used to detect a no-progress round (§8's unknown
// monotonicity property: a converging evaluation must shrink S strictly
// each round it doesn't resolve completely).
func sameAttrSet(a, b []types.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x.Equal(y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
