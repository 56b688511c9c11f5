// path: internal/protocol/codec.go
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Codec reads and writes self-delimiting JSON records on one stream. Record
// boundaries come from the JSON syntax itself; there is no length prefix.
// A Codec must be the only reader and writer of its stream.
type Codec struct {
	in  *ioErrReader
	dec *json.Decoder
	out io.Writer
}

func NewCodec(rw io.ReadWriter) *Codec {
	in := &ioErrReader{r: rw}
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	return &Codec{
		in:  in,
		dec: dec,
		out: rw,
	}
}

// WriteRecord encodes v as one newline-terminated record and hands it to
// the stream in a single Write.
func (c *Codec) WriteRecord(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %T: %v", ErrProtocol, v, err)
	}
	if _, err := c.out.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("%w: write: %w", ErrConnection, err)
	}
	return nil
}

// ReadRecord decodes exactly one record into v. A clean end of stream or a
// transport failure is ErrConnection; anything else that stops a record from
// decoding, including a stream that ends inside a record, is ErrProtocol.
// Either error leaves the codec unusable.
func (c *Codec) ReadRecord(v any) error {
	err := c.dec.Decode(v)
	if err == nil {
		return nil
	}
	if ioErr := c.in.err; ioErr != nil {
		return fmt.Errorf("%w: read: %w", ErrConnection, ioErr)
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: peer closed the stream: %w", ErrConnection, err)
	}
	return fmt.Errorf("%w: decode %T: %w", ErrProtocol, v, err)
}

// ioErrReader remembers the first transport error so it can be told apart
// from a decode error.
type ioErrReader struct {
	r   io.Reader
	err error
}

func (r *ioErrReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}
