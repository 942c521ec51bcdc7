package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/errors"
)

func TestAnalyzeMemory(t *testing.T) {
	report := Segment(sampleDump)

	mr, err := AnalyzeMemory(report)
	require.NoError(t, err)
	assert.Equal(t, int64(536870912), mr.HeapUsedBytes)
	assert.Equal(t, int64(2147483648), mr.HeapMaxBytes)
	assert.InDelta(t, 25.0, mr.UsagePercent, 0.01)
}

func TestAnalyzeMemoryMissingSection(t *testing.T) {
	report := Segment("===== Processors =====\nType: whatever\n")

	_, err := AnalyzeMemory(report)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestAnalyzeMemoryNoFigures(t *testing.T) {
	report := Segment("===== Memory Usage =====\nnothing useful here\n")

	_, err := AnalyzeMemory(report)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestProcessorTypeCounts(t *testing.T) {
	report := Segment(sampleDump)

	counts := ProcessorTypeCounts(report)
	require.Len(t, counts, 2)

	// sorted by full type name
	assert.Equal(t, "org.apache.nifi.processors.kafka.PublishKafka", counts[0].Type)
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, "PublishKafka", counts[0].ShortType())

	assert.Equal(t, "org.apache.nifi.processors.standard.GetFile", counts[1].Type)
	assert.Equal(t, 2, counts[1].Count)
}

func TestProcessorTypeCountsIgnoresForeignTypeLines(t *testing.T) {
	report := Segment("===== Processors =====\nType: com.example.custom.Widget\n")
	assert.Empty(t, ProcessorTypeCounts(report))
}

func TestProcessorTypeCountsMissingSection(t *testing.T) {
	assert.Empty(t, ProcessorTypeCounts(Segment("no sections at all")))
}

func TestSearch(t *testing.T) {
	report := Segment(sampleDump)

	matches := Search(report, "publishkafka")
	require.Len(t, matches, 1)
	assert.Equal(t, KindProcessors, matches[0].Kind)
	assert.Contains(t, matches[0].Context[len(matches[0].Context)-3], "PublishKafka")

	assert.Empty(t, Search(report, "no such needle"))
	assert.Empty(t, Search(report, ""))
}

func TestSearchDocumentOrder(t *testing.T) {
	report := Segment(sampleDump)

	matches := Search(report, "bytes")
	require.Len(t, matches, 2)
	assert.Equal(t, KindMemoryUsage, matches[0].Kind)
	assert.Equal(t, KindMemoryUsage, matches[1].Kind)
	assert.Less(t, matches[0].Line, matches[1].Line)
}
