// Package perf keeps a bounded window of request and query timings and
// summarizes it for /api/perf.
package perf

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the number of samples kept.
const DefaultRingSize = 10000

// DefaultTopN is the length of each slowest-first list in a Snapshot.
const DefaultTopN = 10

// Kind separates HTTP requests from store queries.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
	kindCount
)

func (k Kind) String() string {
	if k == KindQuery {
		return "query"
	}
	return "request"
}

// Sample is one timed operation.
type Sample struct {
	Kind Kind
	// Label is the route ("GET /api/lists/{id}/members") for requests and the
	// method plus verb ("QueryContext SELECT") for queries.
	Label   string
	Status  int // zero for queries
	Elapsed time.Duration
	At      time.Time
}

func (s Sample) ms() float64 {
	return float64(s.Elapsed) / float64(time.Millisecond)
}

// Collector is a fixed-size ring of samples. The oldest sample is
// overwritten once the ring is full; aggregation happens on read.
type Collector struct {
	mu     sync.Mutex
	ring   []Sample
	next   int
	totals [kindCount]atomic.Int64
}

// NewCollector allocates a ring of size samples; size <= 0 uses DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Sample, size)}
}

// Record stores s, overwriting the oldest sample when the ring is full.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.ring[c.next] = s
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	if s.Kind < kindCount {
		c.totals[s.Kind].Add(1)
	}
}

// Total returns the lifetime count of samples of kind k.
func (c *Collector) Total(k Kind) int64 {
	if k >= kindCount {
		return 0
	}
	return c.totals[k].Load()
}

// TotalRecorded returns the lifetime count of all samples.
func (c *Collector) TotalRecorded() int64 {
	return c.Total(KindRequest) + c.Total(KindQuery)
}

// Snapshot summarizes the samples recorded since a point in time.
type Snapshot struct {
	Since          time.Time   `json:"since"`
	TotalRequests  int64       `json:"totalRequests"`
	TotalQueries   int64       `json:"totalQueries"`
	Requests       int         `json:"requests"`
	ClientErrors   int         `json:"clientErrors"`
	ServerErrors   int         `json:"serverErrors"`
	RequestP50Ms   float64     `json:"requestP50Ms"`
	RequestP95Ms   float64     `json:"requestP95Ms"`
	RequestP99Ms   float64     `json:"requestP99Ms"`
	SlowestRoutes  []LabelStat `json:"slowestRoutes"`
	SlowestQueries []LabelStat `json:"slowestQueries"`
}

// LabelStat aggregates the samples sharing a label.
type LabelStat struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"totalMs"`
}

// Snapshot aggregates samples at or after since. Totals are lifetime
// counters; everything else covers the window only.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	window := make([]Sample, 0, len(c.ring))
	for _, s := range c.ring {
		if !s.At.IsZero() && !s.At.Before(since) {
			window = append(window, s)
		}
	}
	c.mu.Unlock()

	snap := Snapshot{
		Since:         since,
		TotalRequests: c.Total(KindRequest),
		TotalQueries:  c.Total(KindQuery),
	}
	routes := map[string]*LabelStat{}
	queries := map[string]*LabelStat{}
	var latencies []float64

	for _, s := range window {
		group := queries
		if s.Kind == KindRequest {
			group = routes
			latencies = append(latencies, s.ms())
			snap.Requests++
			switch {
			case s.Status >= 500:
				snap.ServerErrors++
			case s.Status >= 400:
				snap.ClientErrors++
			}
		}
		st := group[s.Label]
		if st == nil {
			st = &LabelStat{Label: s.Label}
			group[s.Label] = st
		}
		st.Count++
		st.TotalMs += s.ms()
		st.MaxMs = max(st.MaxMs, s.ms())
	}

	slices.Sort(latencies)
	snap.RequestP50Ms = nearestRank(latencies, 50)
	snap.RequestP95Ms = nearestRank(latencies, 95)
	snap.RequestP99Ms = nearestRank(latencies, 99)
	snap.SlowestRoutes = slowest(routes, topN)
	snap.SlowestQueries = slowest(queries, topN)
	return snap
}

// nearestRank returns the p-th percentile of sorted by the nearest-rank
// method, or 0 for an empty slice.
func nearestRank(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	return sorted[min(max(rank, 1), len(sorted))-1]
}

// slowest orders stats by average, slowest first, ties by label, and keeps
// at most n (n <= 0 keeps all).
func slowest(stats map[string]*LabelStat, n int) []LabelStat {
	out := make([]LabelStat, 0, len(stats))
	for _, st := range stats {
		st.AvgMs = st.TotalMs / float64(st.Count)
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b LabelStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
