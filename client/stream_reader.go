package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/detekoi/iron-golem/models"
)

// recordDelimiter separates framed SSE records on the wire.
const recordDelimiter = "\n\n"

// dataPrefix precedes the JSON payload of each record.
const dataPrefix = "data: "

// StreamReader decodes a text/event-stream body one StreamEvent at a
// time. Partial records spanning network chunks are buffered and only
// parsed once the record delimiter arrives; a trailing incomplete record
// is retained and prefixed to the next read.
type StreamReader struct {
	r       io.Reader
	buf     bytes.Buffer
	pending []string
	readBuf []byte
	eof     bool
}

// NewStreamReader wraps a response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		r:       r,
		readBuf: make([]byte, 4096),
	}
}

// Next returns the next decoded event. io.EOF signals a clean end of
// stream; any buffered incomplete record at that point is discarded as
// unparseable trailing garbage.
func (s *StreamReader) Next() (models.StreamEvent, error) {
	for {
		if len(s.pending) > 0 {
			record := s.pending[0]
			s.pending = s.pending[1:]
			event, ok, err := decodeRecord(record)
			if err != nil {
				return models.StreamEvent{}, err
			}
			if !ok {
				continue
			}
			return event, nil
		}

		if s.eof {
			return models.StreamEvent{}, io.EOF
		}

		n, err := s.r.Read(s.readBuf)
		if n > 0 {
			s.buf.Write(s.readBuf[:n])
			s.splitRecords()
		}
		if err == io.EOF {
			s.eof = true
			continue
		}
		if err != nil {
			return models.StreamEvent{}, fmt.Errorf("stream read failed: %w", err)
		}
	}
}

// splitRecords moves complete records out of the buffer, keeping the
// trailing incomplete one (if any) for the next read.
func (s *StreamReader) splitRecords() {
	data := s.buf.String()
	parts := strings.Split(data, recordDelimiter)
	if len(parts) == 1 {
		return
	}

	for _, part := range parts[:len(parts)-1] {
		if strings.TrimSpace(part) != "" {
			s.pending = append(s.pending, part)
		}
	}

	s.buf.Reset()
	s.buf.WriteString(parts[len(parts)-1])
}

// decodeRecord parses one framed record. Records without the data prefix
// (comments, keep-alives) are skipped, not errors.
func decodeRecord(record string) (models.StreamEvent, bool, error) {
	record = strings.TrimSpace(record)
	if !strings.HasPrefix(record, dataPrefix) {
		return models.StreamEvent{}, false, nil
	}
	payload := strings.TrimPrefix(record, dataPrefix)

	var event models.StreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return models.StreamEvent{}, false, fmt.Errorf("malformed stream record: %w", err)
	}
	return event, true, nil
}
