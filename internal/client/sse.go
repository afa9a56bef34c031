package client

import (
	"bufio"
	"bytes"
	"io"
)

// maxEventSize bounds one SSE line.
const maxEventSize = 1 << 20

// sseReader parses Server-Sent Events.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(r io.Reader) *sseReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &sseReader{scanner: s}
}

// next returns the next event's name and data. The name defaults to
// "message". It returns io.EOF when the stream ends.
func (s *sseReader) next() (string, []byte, error) {
	var event string
	var data [][]byte

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			if event == "" && data == nil {
				continue
			}
			if event == "" {
				event = "message"
			}
			return event, bytes.Join(data, []byte("\n")), nil
		}
		switch {
		case line[0] == ':':
		case bytes.HasPrefix(line, []byte("event:")):
			event = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			v := line[len("data:"):]
			if len(v) > 0 && v[0] == ' ' {
				v = v[1:]
			}
			data = append(data, append([]byte(nil), v...))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", nil, err
	}
	return "", nil, io.EOF
}
