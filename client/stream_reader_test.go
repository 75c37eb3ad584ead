package client

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detekoi/iron-golem/models"
)

// chunkedReader yields the input in fixed-size pieces to simulate network
// fragmentation.
type chunkedReader struct {
	data  string
	size  int
	index int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.index >= len(r.data) {
		return 0, io.EOF
	}
	end := r.index + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.index:end])
	r.index += n
	return n, nil
}

func collectEvents(t *testing.T, reader *StreamReader) []models.StreamEvent {
	t.Helper()
	var events []models.StreamEvent
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, event)
	}
}

func TestStreamReader_WholeRecords(t *testing.T) {
	body := "data: {\"type\":\"text\",\"content\":\"Hello\"}\n\n" +
		"data: {\"type\":\"text\",\"content\":\" world\"}\n\n" +
		"data: {\"type\":\"done\"}\n\n"

	events := collectEvents(t, NewStreamReader(strings.NewReader(body)))
	require.Len(t, events, 3)
	assert.Equal(t, models.EventText, events[0].Type)
	assert.Equal(t, "Hello", events[0].Content)
	assert.Equal(t, " world", events[1].Content)
	assert.Equal(t, models.EventDone, events[2].Type)
}

func TestStreamReader_RecordsSplitAcrossChunks(t *testing.T) {
	body := "data: {\"type\":\"text\",\"content\":\"a long fragment that spans reads\"}\n\n" +
		"data: {\"type\":\"done\"}\n\n"

	for _, size := range []int{1, 3, 7, 16} {
		reader := NewStreamReader(&chunkedReader{data: body, size: size})
		events := collectEvents(t, reader)
		require.Len(t, events, 2, "chunk size %d", size)
		assert.Equal(t, "a long fragment that spans reads", events[0].Content, "chunk size %d", size)
		assert.Equal(t, models.EventDone, events[1].Type, "chunk size %d", size)
	}
}

func TestStreamReader_DelimiterSplitAcrossChunks(t *testing.T) {
	// The record delimiter itself lands on a read boundary.
	body := "data: {\"type\":\"text\",\"content\":\"x\"}\n" + "\ndata: {\"type\":\"done\"}\n\n"
	reader := NewStreamReader(&chunkedReader{data: body, size: len(body)/2 + 1})
	events := collectEvents(t, reader)
	require.Len(t, events, 2)
	assert.Equal(t, "x", events[0].Content)
}

func TestStreamReader_SkipsNonDataRecords(t *testing.T) {
	body := ": keep-alive\n\n" +
		"data: {\"type\":\"text\",\"content\":\"hi\"}\n\n"
	events := collectEvents(t, NewStreamReader(strings.NewReader(body)))
	require.Len(t, events, 1)
	assert.Equal(t, "hi", events[0].Content)
}

func TestStreamReader_MalformedRecord(t *testing.T) {
	body := "data: {not json}\n\n"
	reader := NewStreamReader(strings.NewReader(body))
	_, err := reader.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed stream record")
}

func TestStreamReader_TrailingIncompleteRecordDiscarded(t *testing.T) {
	body := "data: {\"type\":\"text\",\"content\":\"ok\"}\n\n" +
		"data: {\"type\":\"te" // truncated mid-record
	reader := NewStreamReader(strings.NewReader(body))
	events := collectEvents(t, reader)
	require.Len(t, events, 1)
	assert.Equal(t, "ok", events[0].Content)
}
