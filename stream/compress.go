package stream

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressedWriter wraps w with zstd compression for on-disk or
// over-the-wire TONE storage, closing the underlying zstd encoder (but
// not w itself) when Close is called.
type CompressedWriter struct {
	enc *zstd.Encoder
}

// NewCompressedWriter wraps w so that writes to it are zstd-compressed.
func NewCompressedWriter(w io.Writer) (*CompressedWriter, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &CompressedWriter{enc: enc}, nil
}

func (c *CompressedWriter) Write(p []byte) (int, error) { return c.enc.Write(p) }

// Close flushes and closes the underlying zstd encoder.
func (c *CompressedWriter) Close() error { return c.enc.Close() }

// CompressedReader wraps r, transparently decompressing zstd-compressed
// TONE content as it's read.
type CompressedReader struct {
	dec *zstd.Decoder
}

// NewCompressedReader wraps r for zstd decompression.
func NewCompressedReader(r io.Reader) (*CompressedReader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &CompressedReader{dec: dec}, nil
}

func (c *CompressedReader) Read(p []byte) (int, error) { return c.dec.Read(p) }

// Close releases the underlying zstd decoder's resources.
func (c *CompressedReader) Close() error {
	c.dec.Close()
	return nil
}
