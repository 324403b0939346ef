package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the sample ring.
const DefaultRingSize = 8192

// SampleKind distinguishes HTTP request samples from store query samples.
type SampleKind uint8

const (
	KindRequest SampleKind = iota
	KindQuery
)

// Sample is a single timing record held in the ring.
type Sample struct {
	Kind       SampleKind
	Label      string // HTTP route or database operation name
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring of timing samples.
// Writes never block; once full the oldest samples are overwritten.
// Aggregation is deferred to Snapshot.
type Collector struct {
	mu      sync.Mutex
	samples []Sample
	size    int
	pos     int
	total   int64
}

// NewCollector creates a collector with the given ring capacity.
// PRE: size > 0 (non-positive sizes fall back to DefaultRingSize)
// POST: Returns a collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		samples: make([]Sample, size),
		size:    size,
	}
}

// Record appends a sample to the ring.
// PRE: s carries a non-zero Timestamp
// POST: Sample stored; if the ring is full the oldest sample is overwritten
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.samples[c.pos] = s
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.total, 1)
}

// TotalRecorded returns the number of samples ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.total)
}

// LabelStat aggregates timing for a single route or query label.
type LabelStat struct {
	Label   string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

// Snapshot holds aggregated timing data computed on read.
type Snapshot struct {
	TotalSamples   int64
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	SlowestRoutes  []LabelStat
	SlowestQueries []LabelStat
}

// Snapshot aggregates the ring contents newer than since.
// Sorting makes this comparatively expensive, so it is only called from
// the admin performance endpoint.
// PRE: topN > 0
// POST: Returns percentiles and top-N slowest routes and queries
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Sample, c.size)
	copy(buf, c.samples)
	c.mu.Unlock()

	var durations []float64
	routes := make(map[string]*LabelStat)
	queries := make(map[string]*LabelStat)

	for _, s := range buf {
		if s.Timestamp.IsZero() || s.Timestamp.Before(since) {
			continue
		}
		var bucket map[string]*LabelStat
		switch s.Kind {
		case KindRequest:
			durations = append(durations, s.DurationMs)
			bucket = routes
		case KindQuery:
			bucket = queries
		default:
			continue
		}
		st, ok := bucket[s.Label]
		if !ok {
			st = &LabelStat{Label: s.Label}
			bucket[s.Label] = st
		}
		st.Count++
		st.TotalMs += s.DurationMs
		if s.DurationMs > st.MaxMs {
			st.MaxMs = s.DurationMs
		}
	}

	for _, st := range routes {
		st.AvgMs = st.TotalMs / float64(st.Count)
	}
	for _, st := range queries {
		st.AvgMs = st.TotalMs / float64(st.Count)
	}

	snap := Snapshot{
		TotalSamples:   c.TotalRecorded(),
		SlowestRoutes:  topByAvg(routes, topN),
		SlowestQueries: topByAvg(queries, topN),
	}

	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}

	return snap
}

// percentile returns the p-th percentile from a sorted slice using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N labels by average duration, slowest first.
func topByAvg(stats map[string]*LabelStat, n int) []LabelStat {
	list := make([]LabelStat, 0, len(stats))
	for _, st := range stats {
		list = append(list, *st)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
