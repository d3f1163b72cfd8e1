package metrics

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"time"
)

const topQueryLimit = 10

// Analyzer processes metrics logs.
type Analyzer struct {
	logPath string
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(logPath string) *Analyzer {
	return &Analyzer{logPath: logPath}
}

// Summary contains aggregated metrics.
type Summary struct {
	Period           string         `json:"period"`
	TotalSearches    int            `json:"total_searches"`
	SearchesByIntent map[string]int `json:"searches_by_intent"`
	AvgLatencyMs     int64          `json:"avg_latency_ms"`
	ZeroResultCount  int            `json:"zero_result_count"`
	ClarifiedCount   int            `json:"clarified_count"`
	SuggestedCount   int            `json:"suggested_count"`
	CacheHits        int            `json:"cache_hits"`
	ErrorCount       int            `json:"error_count"`
	TopQueries       []QueryCount   `json:"top_queries"`
}

// QueryCount represents a query with its count.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// logEvent is the union of fields any event may carry.
type logEvent struct {
	TS          string `json:"ts"`
	Event       string `json:"event"`
	Query       string `json:"query"`
	Intent      string `json:"intent"`
	Results     int    `json:"results"`
	Suggestions int    `json:"suggestions"`
	Clarified   bool   `json:"clarified"`
	LatencyMs   int64  `json:"latency_ms"`
	CacheHit    bool   `json:"cache_hit"`
}

// fallbackIntent labels searches that matched no intent.
const fallbackIntent = "none"

// Analyze processes logs for a time period.
func (a *Analyzer) Analyze(since time.Duration) (*Summary, error) {
	summary := &Summary{
		Period:           since.String(),
		SearchesByIntent: make(map[string]int),
	}

	queryCounts := make(map[string]int)
	var totalLatency int64

	err := a.scan(since, func(ev logEvent) {
		switch ev.Event {
		case EventSearch:
			summary.TotalSearches++

			intent := ev.Intent
			if intent == "" {
				intent = fallbackIntent
			}
			summary.SearchesByIntent[intent]++

			if ev.Results == 0 {
				summary.ZeroResultCount++
			}
			if ev.Clarified {
				summary.ClarifiedCount++
			}
			if ev.Suggestions > 0 {
				summary.SuggestedCount++
			}
			if ev.CacheHit {
				summary.CacheHits++
			}
			totalLatency += ev.LatencyMs
			queryCounts[ev.Query]++
		case EventError:
			summary.ErrorCount++
		}
	})
	if err != nil {
		return nil, err
	}

	if summary.TotalSearches > 0 {
		summary.AvgLatencyMs = totalLatency / int64(summary.TotalSearches)
	}

	summary.TopQueries = rankCounts(queryCounts)
	if len(summary.TopQueries) > topQueryLimit {
		summary.TopQueries = summary.TopQueries[:topQueryLimit]
	}

	return summary, nil
}

// GetZeroResultQueries returns queries that returned no results.
func (a *Analyzer) GetZeroResultQueries(since time.Duration) ([]QueryCount, error) {
	queryCounts := make(map[string]int)

	err := a.scan(since, func(ev logEvent) {
		if ev.Event == EventSearch && ev.Results == 0 && !ev.CacheHit {
			queryCounts[ev.Query]++
		}
	})
	if err != nil {
		return nil, err
	}

	return rankCounts(queryCounts), nil
}

// scan calls fn for each well-formed event newer than since.
func (a *Analyzer) scan(since time.Duration, fn func(logEvent)) error {
	file, err := os.Open(a.logPath)
	if err != nil {
		return err
	}
	defer file.Close()

	cutoff := time.Now().Add(-since)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev logEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}

		ts, err := time.Parse(time.RFC3339, ev.TS)
		if err != nil || ts.Before(cutoff) {
			continue
		}
		fn(ev)
	}
	return scanner.Err()
}

// rankCounts orders by count descending, then query ascending.
func rankCounts(counts map[string]int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for q, c := range counts {
		result = append(result, QueryCount{Query: q, Count: c})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	return result
}
