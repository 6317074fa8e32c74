package chain

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum-optimism/cycler/cycler/commitment"
)

// Plan is the identity sequence of one chain, genesis first.
type Plan []commitment.Identity

func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}

// ParsePlan reads a comma separated list of identities.
func ParsePlan(s string) (Plan, error) {
	var p Plan
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid identity %q: %w", part, err)
		}
		p = append(p, commitment.Identity(v))
	}
	if len(p) == 0 {
		return nil, ErrEmptyPlan
	}
	return p, nil
}

// Result is the outcome of one chain. Err is set when the chain could not be
// completed; Verdict is meaningful only when Err is nil.
type Result struct {
	Run     string
	Plan    Plan
	Chain   *Chain
	Verdict Verdict
	Err     error
}

// Runner proves independent chains in parallel, sharing one setup.
type Runner struct {
	o       *Orchestrator
	workers int
}

func NewRunner(o *Orchestrator, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{o: o, workers: workers}
}

// RunAll proves every plan and extracts a verdict from each final proof.
// A failing chain is recorded in its Result and does not stop the others;
// only cancellation of ctx aborts the run.
func (r *Runner) RunAll(ctx context.Context, plans []Plan) ([]Result, error) {
	results := make([]Result, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, plan := range plans {
		i, plan := i, plan
		g.Go(func() error {
			id := uuid.New().String()
			o := r.o.WithLogger(r.o.log.New("run", id))
			res := Result{Run: id, Plan: plan}
			c, err := o.Run(gctx, plan)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				o.log.Error("chain failed", "plan", plan, "err", err)
				res.Err = err
			} else {
				res.Chain = c
				res.Verdict = o.Extract(c.Last())
				o.log.Info("chain complete", "plan", plan, "commitment", c.Commitment(), "verdict", res.Verdict)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
