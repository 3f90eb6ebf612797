// Package suggest ranks previously visited directories for the current
// working directory ("smart suggestions").
//
// Suggest is a pure function of its inputs: the same history snapshot,
// working directory, clock value and configuration always produce the same
// ordered list.
package suggest

import (
	"math"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cdir/internal/pathutil"
	"github.com/starford/cdir/internal/store"
)

// Weights scales the three scoring factors.
type Weights struct {
	Recency   float64 `yaml:"recency"`
	Frequency float64 `yaml:"frequency"`
	Affinity  float64 `yaml:"affinity"`
}

// Validate rejects negative weights.
func (w Weights) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Recency, validation.Min(0.0)),
		validation.Field(&w.Frequency, validation.Min(0.0)),
		validation.Field(&w.Affinity, validation.Min(0.0)),
	)
}

// Config tunes the ranking.
type Config struct {
	// Limit is the maximum number of suggestions. Zero disables them.
	Limit int
	// Lookback bounds the history considered. Zero means unbounded.
	Lookback time.Duration
	// HalfLife is the age at which the recency term drops to one half.
	HalfLife time.Duration
	// FollowWindow is how many visits after a visit to the working
	// directory count as "followed from" it.
	FollowWindow int
	Weights      Weights
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Limit:        5,
		Lookback:     30 * 24 * time.Hour,
		HalfLife:     72 * time.Hour,
		FollowWindow: 3,
		Weights:      Weights{Recency: 0.3, Frequency: 0.3, Affinity: 0.4},
	}
}

// Suggestion is one ranked path.
type Suggestion struct {
	Path      string
	Score     float64
	Visits    int
	LastVisit time.Time
}

type stats struct {
	count int
	last  time.Time
}

// Suggest ranks the paths of history for a user standing in cwd at now.
// It returns nothing when the windowed history is empty or has never seen
// cwd. Only paths related to cwd, either by directory structure or by
// having been visited shortly after cwd, are suggested; cwd itself never is.
func Suggest(history []store.Visit, cwd string, now time.Time, cfg Config) []Suggestion {
	if cfg.Limit <= 0 {
		return nil
	}
	visits := window(history, now, cfg.Lookback)
	if len(visits) == 0 {
		return nil
	}

	per := make(map[string]*stats)
	maxCount := 0
	for _, v := range visits {
		s, ok := per[v.Path]
		if !ok {
			s = &stats{}
			per[v.Path] = s
		}
		s.count++
		if v.Time.After(s.last) {
			s.last = v.Time
		}
		maxCount = max(maxCount, s.count)
	}
	if _, seen := per[cwd]; !seen {
		return nil
	}

	follow := followRates(visits, cwd, cfg.FollowWindow)
	halfLife := cfg.HalfLife
	if halfLife <= 0 {
		halfLife = DefaultConfig().HalfLife
	}

	var out []Suggestion
	for p, s := range per {
		if p == cwd {
			continue
		}
		affinity := max(relation(p, cwd), follow[p])
		if affinity <= 0 {
			continue
		}
		age := max(now.Sub(s.last), 0)
		recency := math.Exp(-math.Ln2 * float64(age) / float64(halfLife))
		frequency := math.Log1p(float64(s.count)) / math.Log1p(float64(maxCount))

		out = append(out, Suggestion{
			Path:      p,
			Visits:    s.count,
			LastVisit: s.last,
			Score: cfg.Weights.Recency*recency +
				cfg.Weights.Frequency*frequency +
				cfg.Weights.Affinity*affinity,
		})
	}

	slices.SortFunc(out, func(a, b Suggestion) int {
		switch {
		case a.Score != b.Score:
			if a.Score > b.Score {
				return -1
			}
			return 1
		case !a.LastVisit.Equal(b.LastVisit):
			return b.LastVisit.Compare(a.LastVisit)
		default:
			return strings.Compare(a.Path, b.Path)
		}
	})
	if len(out) > cfg.Limit {
		out = out[:cfg.Limit]
	}
	return out
}

// window returns the visits inside [now-lookback, now] in insertion order.
func window(history []store.Visit, now time.Time, lookback time.Duration) []store.Visit {
	var from time.Time
	if lookback > 0 {
		from = now.Add(-lookback)
	}
	out := make([]store.Visit, 0, len(history))
	for _, v := range history {
		if v.Time.After(now) || (lookback > 0 && v.Time.Before(from)) {
			continue
		}
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b store.Visit) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return a.Time.Compare(b.Time)
	})
	return out
}

// relation scores the directory relationship between p and cwd.
func relation(p, cwd string) float64 {
	switch {
	case pathutil.Parent(p) == cwd, pathutil.Parent(cwd) == p:
		return 1
	case pathutil.IsSibling(p, cwd):
		return 0.5
	}
	return 0
}

// followRates returns, per path, the share of cwd visits followed by a
// visit to that path within the next n visits.
func followRates(visits []store.Visit, cwd string, n int) map[string]float64 {
	rates := make(map[string]float64)
	if n <= 0 {
		return rates
	}
	hits := make(map[string]int)
	occurrences := 0
	for i, v := range visits {
		if v.Path != cwd {
			continue
		}
		occurrences++
		seen := make(map[string]bool)
		for j := i + 1; j < len(visits) && j <= i+n; j++ {
			p := visits[j].Path
			if p == cwd {
				break
			}
			if !seen[p] {
				seen[p] = true
				hits[p]++
			}
		}
	}
	for p, h := range hits {
		rates[p] = float64(h) / float64(occurrences)
	}
	return rates
}
