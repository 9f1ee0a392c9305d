// Package relations runs the statistical test matching each declared edge and collects one
// record or one error per edge.
package relations

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/edges"
)

// Options tunes the analyzer.
type Options struct {
	// A category is "significant" when |category mean - overall mean| > SignificanceStdFactor * overall std.
	SignificanceStdFactor float64
	// Workers > 1 evaluates edges concurrently. Output order does not depend on it.
	Workers int
}

// DefaultOptions returns the standard analyzer settings.
func DefaultOptions() Options {
	return Options{SignificanceStdFactor: 0.5, Workers: 1}
}

// Relation pairs an edge with its record.
type Relation struct {
	Key    string     `json:"key"`
	Edge   edges.Edge `json:"-"`
	Record Record     `json:"-"`
}

// Result is the outcome of one analysis pass: records keyed by edge in first-seen order and
// the error log in edge order.
type Result struct {
	Relations []Relation
	Errors    []ErrorEntry
}

// Get returns the record stored under an edge key ("a -> b" or "[a, b] -> c").
func (r *Result) Get(key string) (Record, bool) {
	for _, rel := range r.Relations {
		if rel.Key == key {
			return rel.Record, true
		}
	}
	return nil, false
}

// Analyzer dispatches each edge to its statistical procedure.
type Analyzer struct {
	opt    Options
	logger *zap.Logger
}

// NewAnalyzer builds an analyzer. A nil logger disables logging.
func NewAnalyzer(opt Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opt.SignificanceStdFactor <= 0 {
		opt.SignificanceStdFactor = DefaultOptions().SignificanceStdFactor
	}
	return &Analyzer{opt: opt, logger: logger.Named("relations")}
}

type outcome struct {
	record Record
	err    error
}

// Analyze evaluates every edge against ds. It never fails as a whole: problems are reported
// per edge in Result.Errors. The dataset is not modified.
func (a *Analyzer) Analyze(ds *dataset.Dataset, list []edges.Edge) *Result {
	outcomes := make([]outcome, len(list))
	if a.opt.Workers > 1 && len(list) > 1 {
		var g errgroup.Group
		g.SetLimit(a.opt.Workers)
		for i, e := range list {
			g.Go(func() error {
				rec, err := a.analyzeEdge(ds, e)
				outcomes[i] = outcome{record: rec, err: err}
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, e := range list {
			rec, err := a.analyzeEdge(ds, e)
			outcomes[i] = outcome{record: rec, err: err}
		}
	}

	res := &Result{}
	pos := map[string]int{}
	for i, o := range outcomes {
		key := list[i].Key()
		if o.err != nil {
			entry := newEntry(key, o.err)
			a.logger.Warn("edge failed", zap.String("subject", key), zap.String("kind", string(entry.Kind)), zap.Error(o.err))
			res.Errors = append(res.Errors, entry)
			continue
		}
		// a repeated edge keeps its first position and takes the latest record
		if p, ok := pos[key]; ok {
			res.Relations[p].Record = o.record
			continue
		}
		pos[key] = len(res.Relations)
		res.Relations = append(res.Relations, Relation{Key: key, Edge: list[i], Record: o.record})
	}
	a.logger.Debug("analysis complete", zap.Int("relations", len(res.Relations)), zap.Int("errors", len(res.Errors)))
	return res
}

func (a *Analyzer) analyzeEdge(ds *dataset.Dataset, e edges.Edge) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, &ComputationError{Op: "analysis", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if verr := e.Validate(); verr != nil {
		return nil, &StructuralError{Reason: verr.Error()}
	}
	var missing []string
	sources := make([]*dataset.Column, 0, len(e.Sources))
	for _, name := range e.Sources {
		c, ok := ds.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		sources = append(sources, c)
	}
	target, ok := ds.Column(e.Target)
	if !ok {
		missing = append(missing, e.Target)
	}
	if len(missing) > 0 {
		return nil, &StructuralError{Missing: missing}
	}

	rows := ds.CompleteRows(append(append([]*dataset.Column(nil), sources...), target)...)
	if len(rows) == 0 {
		return nil, insufficient("no valid data after dropping missing values")
	}
	a.logger.Debug("analyzing edge", zap.String("edge", e.Key()), zap.Int("rows", len(rows)))

	if e.Multi {
		return a.analyzeMulti(sources, target, rows)
	}
	return a.analyzeSingle(sources[0], target, rows)
}
