// Package profile describes every column of a dataset according to its inferred type.
package profile

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
)

// Options controls profiling thresholds.
type Options struct {
	// StringThreshold is the average character length above which text is free text.
	StringThreshold float64
	// IncludeHistogram adds bin counts to continuous profiles.
	IncludeHistogram bool
	// Normality is tested on at most NormalityMaxSample values and only from NormalityMinSample up.
	NormalityMaxSample int
	NormalityMinSample int
	Alpha              float64
	// Categorical tables are cut to TopCategories once there are more than CategoryLimit values.
	CategoryLimit int
	TopCategories int
	WordTop       int
	StringSamples int
	Seed          uint64
	Workers       int
}

// DefaultOptions returns the standard profiling settings.
func DefaultOptions() Options {
	return Options{
		StringThreshold:    30,
		NormalityMaxSample: 5000,
		NormalityMinSample: 8,
		Alpha:              0.05,
		CategoryLimit:      20,
		TopCategories:      10,
		WordTop:            10,
		StringSamples:      3,
		Seed:               42,
		Workers:            1,
	}
}

// Result holds profiles in dataset column order and the error log.
type Result struct {
	Columns  []string
	Profiles map[string]Profile
	Errors   []string
}

// Profiler builds column profiles.
type Profiler struct {
	opt    Options
	logger *zap.Logger
}

// NewProfiler fills zero options from DefaultOptions. A nil logger disables logging.
func NewProfiler(opt Options, logger *zap.Logger) *Profiler {
	def := DefaultOptions()
	if opt.StringThreshold <= 0 {
		opt.StringThreshold = def.StringThreshold
	}
	if opt.NormalityMaxSample <= 0 {
		opt.NormalityMaxSample = def.NormalityMaxSample
	}
	if opt.NormalityMinSample <= 0 {
		opt.NormalityMinSample = def.NormalityMinSample
	}
	if opt.Alpha <= 0 {
		opt.Alpha = def.Alpha
	}
	if opt.CategoryLimit <= 0 {
		opt.CategoryLimit = def.CategoryLimit
	}
	if opt.TopCategories <= 0 {
		opt.TopCategories = def.TopCategories
	}
	if opt.WordTop <= 0 {
		opt.WordTop = def.WordTop
	}
	if opt.StringSamples <= 0 {
		opt.StringSamples = def.StringSamples
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{opt: opt, logger: logger.Named("profile")}
}

// Analyze profiles every column of ds. A failing column is recorded in Result.Errors and
// skipped; the pass always completes.
func (p *Profiler) Analyze(ds *dataset.Dataset) *Result {
	profiles := make([]Profile, len(ds.Columns))
	errs := make([]error, len(ds.Columns))
	if p.opt.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(p.opt.Workers)
		for i, c := range ds.Columns {
			g.Go(func() error {
				profiles[i], errs[i] = p.column(c)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, c := range ds.Columns {
			profiles[i], errs[i] = p.column(c)
		}
	}

	res := &Result{Profiles: make(map[string]Profile, len(ds.Columns))}
	for i, c := range ds.Columns {
		if errs[i] != nil {
			msg := fmt.Sprintf("Error analyzing %s: %v", c.Name, errs[i])
			p.logger.Warn("column failed", zap.String("subject", c.Name), zap.Error(errs[i]))
			res.Errors = append(res.Errors, msg)
			continue
		}
		res.Columns = append(res.Columns, c.Name)
		res.Profiles[c.Name] = profiles[i]
	}
	return res
}

func (p *Profiler) column(c *dataset.Column) (prof Profile, err error) {
	defer func() {
		if r := recover(); r != nil {
			prof, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	p.logger.Debug("profiling column", zap.String("column", c.Name), zap.Stringer("kind", c.Kind))

	rows := c.Len()
	missing := c.NullCount()
	b := Base{Count: rows - missing, MissingCount: missing}
	if rows > 0 {
		b.MissingPercentage = float64(missing) / float64(rows) * 100
	}

	switch b.Type = Classify(c, p.opt.StringThreshold); b.Type {
	case TypeUnknown:
		return &Unknown{Base: b, Analysis: "Column contains all missing values"}, nil
	case TypeContinuous:
		return p.continuous(b, c)
	case TypeCategorical:
		return p.categorical(b, present(c)), nil
	case TypeString:
		return p.text(b, present(c)), nil
	case TypeBoolean:
		return boolean(b, c), nil
	case TypeDatetime:
		return datetime(b, c), nil
	}
	return nil, fmt.Errorf("unsupported column type %q", b.Type)
}
