package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzerAnalyze(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "metrics.jsonl")

	now := time.Now().UTC()
	recentTS := now.Add(-1 * time.Hour).Format(time.RFC3339)
	oldTS := now.Add(-25 * time.Hour).Format(time.RFC3339)

	logData := `{"ts":"` + recentTS + `","event":"search","query":"pay water bill","intent":"pay_bill","results":5,"suggestions":0,"clarified":true,"latency_ms":100,"cache_hit":false}
{"ts":"` + recentTS + `","event":"search","query":"pay water bill","intent":"pay_bill","results":5,"suggestions":0,"clarified":true,"latency_ms":150,"cache_hit":true}
{"ts":"` + recentTS + `","event":"search","query":"zzqx","intent":"","results":0,"suggestions":5,"clarified":false,"latency_ms":50,"cache_hit":false}
{"ts":"` + recentTS + `","event":"error","operation":"search","message":"boom"}
{"ts":"` + oldTS + `","event":"search","query":"old query","intent":"trash","results":10,"latency_ms":200,"cache_hit":false}
not json at all
`
	err := os.WriteFile(logPath, []byte(logData), 0644)
	require.NoError(t, err)

	analyzer := NewAnalyzer(logPath)
	summary, err := analyzer.Analyze(24 * time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalSearches) // Only recent events
	assert.Equal(t, 2, summary.SearchesByIntent["pay_bill"])
	assert.Equal(t, 1, summary.SearchesByIntent["none"])
	assert.Equal(t, 1, summary.ZeroResultCount)
	assert.Equal(t, 2, summary.ClarifiedCount)
	assert.Equal(t, 1, summary.SuggestedCount)
	assert.Equal(t, 1, summary.CacheHits)
	assert.Equal(t, 1, summary.ErrorCount)
	assert.Equal(t, int64(100), summary.AvgLatencyMs) // (100+150+50)/3

	require.Len(t, summary.TopQueries, 2)
	assert.Equal(t, QueryCount{Query: "pay water bill", Count: 2}, summary.TopQueries[0])
	assert.Equal(t, QueryCount{Query: "zzqx", Count: 1}, summary.TopQueries[1])
}

func TestAnalyzerGetZeroResultQueries(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "metrics.jsonl")

	now := time.Now().UTC()
	recentTS := now.Add(-1 * time.Hour).Format(time.RFC3339)

	logData := `{"ts":"` + recentTS + `","event":"search","query":"trash pickup","results":5}
{"ts":"` + recentTS + `","event":"search","query":"dragon permit","results":0}
{"ts":"` + recentTS + `","event":"search","query":"dragon permit","results":0}
{"ts":"` + recentTS + `","event":"search","query":"zzqx","results":0}
{"ts":"` + recentTS + `","event":"search","query":"abcd","results":0}
`
	err := os.WriteFile(logPath, []byte(logData), 0644)
	require.NoError(t, err)

	analyzer := NewAnalyzer(logPath)
	zeroResults, err := analyzer.GetZeroResultQueries(24 * time.Hour)
	require.NoError(t, err)

	require.Len(t, zeroResults, 3)
	assert.Equal(t, QueryCount{Query: "dragon permit", Count: 2}, zeroResults[0])
	// Equal counts order alphabetically
	assert.Equal(t, QueryCount{Query: "abcd", Count: 1}, zeroResults[1])
	assert.Equal(t, QueryCount{Query: "zzqx", Count: 1}, zeroResults[2])
}

func TestAnalyzerEmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "empty.jsonl")
	err := os.WriteFile(logPath, []byte(""), 0644)
	require.NoError(t, err)

	analyzer := NewAnalyzer(logPath)
	summary, err := analyzer.Analyze(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalSearches)
	assert.Empty(t, summary.TopQueries)
}

func TestAnalyzerFileNotFound(t *testing.T) {
	analyzer := NewAnalyzer("/nonexistent/path/metrics.jsonl")
	_, err := analyzer.Analyze(24 * time.Hour)
	assert.Error(t, err)
}
