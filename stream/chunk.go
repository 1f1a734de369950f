package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/tonefmt/tone"
)

// EncodeChunks encodes items from an iterator-style callback in bounded
// batches of chunkSize, writing each chunk as a standalone TONE array
// document to w, followed by a blank line. next should return (item, true) while items remain and
// (zero, false) once exhausted, mirroring a Python generator's protocol
// with an explicit has-more flag instead of StopIteration.
//
// Each chunk is encoded independently: large datasets can be streamed to
// disk without holding the whole collection in memory at once, at the
// cost of the chunk boundary itself not being a single coherent TONE
// array header (each chunk carries its own header and item count).
func EncodeChunks(w io.Writer, next func() (interface{}, bool), chunkSize int, opts *tone.EncodeOptions) error {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	buf := make([]interface{}, 0, chunkSize)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		encoded, err := tone.EncodeWithOptions(buf, opts)
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(encoded); err != nil {
			return err
		}
		if _, err := bw.WriteString("\n\n"); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	for {
		item, ok := next()
		if !ok {
			break
		}
		buf = append(buf, item)
		if len(buf) >= chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// DecodeLines reads blank-line-separated TONE documents from r, one per
// line group, invoking emit for each successfully decoded chunk's items
// (or, for a non-array chunk, the single decoded value). This supports
// the layout EncodeChunks produces: one encoded array document per group.
func DecodeLines(r io.Reader, opts *tone.DecodeOptions, emit func(interface{}) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var pending strings.Builder
	flush := func() error {
		text := pending.String()
		pending.Reset()
		if strings.TrimSpace(text) == "" {
			return nil
		}
		value, err := tone.DecodeWithOptions(text, opts)
		if err != nil {
			return err
		}
		if arr, ok := value.([]interface{}); ok {
			for _, item := range arr {
				if err := emit(item); err != nil {
					return err
				}
			}
			return nil
		}
		return emit(value)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		pending.WriteString(line)
		pending.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}
