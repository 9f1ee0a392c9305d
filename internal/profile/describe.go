package profile

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/stats"
)

func (p *Profiler) continuous(b Base, c *dataset.Column) (Profile, error) {
	x := make([]float64, 0, b.Count)
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			x = append(x, c.Float(i))
		}
	}
	s := stats.Describe(x)
	if math.IsNaN(s.Mean) || math.IsInf(s.Mean, 0) {
		return nil, errors.New("column has no finite values")
	}
	prof := &Continuous{
		Base:     b,
		Min:      s.Min,
		Max:      s.Max,
		Mean:     s.Mean,
		Median:   s.Median,
		Std:      stats.Opt(s.Std),
		Q1:       s.Q1,
		Q3:       s.Q3,
		IQR:      s.Q3 - s.Q1,
		Variance: stats.Opt(s.Std * s.Std),
		Skewness: stats.Opt(stats.Skewness(x)),
		Kurtosis: stats.Opt(stats.Kurtosis(x)),
	}

	if len(x) >= p.opt.NormalityMinSample {
		sample := stats.Sample(x, p.opt.NormalityMaxSample, p.opt.Seed)
		if res, err := stats.ShapiroWilk(sample, p.opt.Alpha); err == nil {
			prof.Normality = &NormalityTest{Test: "shapiro", Normality: res}
		} else {
			p.logger.Debug("normality test skipped", zap.String("column", c.Name), zap.Error(err))
		}
	}

	lower, upper := s.Q1-1.5*prof.IQR, s.Q3+1.5*prof.IQR
	prof.Outliers = Outliers{LowerBound: lower, UpperBound: upper}
	for _, v := range x {
		if v < lower || v > upper {
			prof.Outliers.Count++
		}
	}
	prof.Outliers.Percentage = float64(prof.Outliers.Count) / float64(len(x)) * 100

	if p.opt.IncludeHistogram {
		prof.Histogram = p.histogram(c.Name, x)
	}
	return prof, nil
}

// histogram drops only the histogram when binning fails.
func (p *Profiler) histogram(column string, x []float64) (h *stats.Histogram) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("histogram skipped", zap.String("column", column), zap.Any("panic", r))
			h = nil
		}
	}()
	out := stats.NewHistogram(x)
	return &out
}

// valueCounts returns values by descending count, ties in order of first appearance.
func valueCounts(values []string) []ValueShare {
	idx := map[string]int{}
	var out []ValueShare
	for _, v := range values {
		i, ok := idx[v]
		if !ok {
			i = len(out)
			idx[v] = i
			out = append(out, ValueShare{Value: v})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	n := float64(len(values))
	for i := range out {
		out[i].Percentage = math.Round(float64(out[i].Count)/n*10000) / 100
	}
	return out
}

func (p *Profiler) categorical(b Base, values []string) Profile {
	counts := valueCounts(values)
	prof := &Categorical{Base: b, UniqueValues: len(counts), TotalCategories: len(counts)}
	if len(counts) > 0 {
		most, least := counts[0], counts[len(counts)-1]
		prof.MostCommon, prof.LeastCommon = &most, &least
	}

	n := float64(len(values))
	var h float64
	for _, vc := range counts {
		pr := float64(vc.Count) / n
		h -= pr * math.Log2(pr)
	}
	prof.Entropy = Entropy{Value: h}
	if len(counts) > 0 {
		prof.Entropy.MaxPossible = math.Log2(float64(len(counts)))
	}
	if prof.Entropy.MaxPossible > 0 {
		prof.Entropy.Normalized = h / prof.Entropy.MaxPossible
	}

	prof.Categories = counts
	if len(counts) > p.opt.CategoryLimit {
		prof.Categories = counts[:min(p.opt.TopCategories, len(counts))]
		prof.Truncated = true
	}
	return prof
}

var (
	emailRe   = regexp.MustCompile(`[^@]+@[^@]+\.[^@]+`)
	urlRe     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	digitsRe  = regexp.MustCompile(`\d+`)
	specialRe = regexp.MustCompile(`[^\w\s]`)
	wordRe    = regexp.MustCompile(`\b\w+\b`)
)

func (p *Profiler) text(b Base, values []string) Profile {
	prof := &String{Base: b}
	if len(values) == 0 {
		return prof
	}
	seen := map[string]struct{}{}
	tl := TextLength{MinChars: math.MaxInt, MinWords: math.MaxInt}
	var chars, words int
	for _, v := range values {
		seen[v] = struct{}{}
		nc, nw := utf8.RuneCountInString(v), len(strings.Fields(v))
		chars += nc
		words += nw
		tl.MinChars, tl.MaxChars = min(tl.MinChars, nc), max(tl.MaxChars, nc)
		tl.MinWords, tl.MaxWords = min(tl.MinWords, nw), max(tl.MaxWords, nw)

		prof.Patterns.ContainsEmails = prof.Patterns.ContainsEmails || emailRe.MatchString(v)
		prof.Patterns.ContainsURLs = prof.Patterns.ContainsURLs || urlRe.MatchString(v)
		prof.Patterns.ContainsNumbers = prof.Patterns.ContainsNumbers || digitsRe.MatchString(v)
		prof.Patterns.ContainsSpecialChars = prof.Patterns.ContainsSpecialChars || specialRe.MatchString(v)
	}
	n := float64(len(values))
	tl.AvgChars, tl.AvgWords = float64(chars)/n, float64(words)/n
	prof.TextLength = tl
	prof.UniqueValues = len(seen)
	prof.UniquenessRatio = float64(len(seen)) / n

	if tl.MaxWords > 1 {
		var all []string
		for _, v := range values {
			all = append(all, wordRe.FindAllString(strings.ToLower(v), -1)...)
		}
		if len(all) > 0 {
			counts := valueCounts(all)
			wf := &WordFrequency{TotalWords: len(all), UniqueWords: len(counts)}
			for _, vc := range counts[:min(p.opt.WordTop, len(counts))] {
				wf.TopWords = append(wf.TopWords, WordCount{Word: vc.Value, Count: vc.Count})
			}
			prof.WordFrequency = wf
		}
	}
	prof.SampleValues = append([]string(nil), values[:min(p.opt.StringSamples, len(values))]...)
	return prof
}

func boolean(b Base, c *dataset.Column) Profile {
	prof := &Boolean{Base: b}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if c.Bools[i] {
			prof.TrueCount++
		} else {
			prof.FalseCount++
		}
	}
	if b.Count > 0 {
		prof.TruePercentage = float64(prof.TrueCount) / float64(b.Count) * 100
		prof.FalsePercentage = float64(prof.FalseCount) / float64(b.Count) * 100
	}
	return prof
}

const isoLayout = "2006-01-02T15:04:05"

func datetime(b Base, c *dataset.Column) Profile {
	prof := &Datetime{Base: b, Distribution: TimeDistribution{
		Years:    map[string]int{},
		Months:   map[string]int{},
		Weekdays: map[string]int{},
	}}
	var lo, hi time.Time
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		t := c.Times[i]
		if lo.IsZero() || t.Before(lo) {
			lo = t
		}
		if hi.IsZero() || t.After(hi) {
			hi = t
		}
		prof.Distribution.Years[strconv.Itoa(t.Year())]++
		prof.Distribution.Months[strconv.Itoa(int(t.Month()))]++
		prof.Distribution.Weekdays[strconv.Itoa((int(t.Weekday())+6)%7)]++
	}
	prof.Min, prof.Max = lo.Format(isoLayout), hi.Format(isoLayout)
	prof.RangeDays = int(math.Floor(hi.Sub(lo).Hours() / 24))
	return prof
}
