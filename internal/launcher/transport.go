package launcher

import (
	"encoding/binary"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Serializer converts status messages to and from bytes. The default
// implementation uses MessagePack, matching the framing the Python side's
// status helper writes.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// MsgpackSerializer is the default Serializer.
type MsgpackSerializer struct{}

func (MsgpackSerializer) Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackSerializer) Unmarshal(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}

// FrameTransport reads and writes length-prefixed binary frames over a pipe.
// Each frame is a 4-byte big-endian length followed by the payload. The
// status channel carries a handful of small frames at startup, so frames are
// allocated directly rather than pooled.
type FrameTransport struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

// NewFrameTransport wraps a reader and writer in a frame transport. Either
// side may be nil for a one-directional channel.
func NewFrameTransport(reader io.ReadCloser, writer io.WriteCloser) *FrameTransport {
	return &FrameTransport{reader: reader, writer: writer}
}

// Send writes one frame.
func (t *FrameTransport) Send(data []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	if _, err := t.writer.Write(length[:]); err != nil {
		return err
	}
	_, err := t.writer.Write(data)
	return err
}

// Receive reads one complete frame, blocking until it arrives.
// Returns io.EOF when the remote end closes the pipe.
func (t *FrameTransport) Receive() ([]byte, error) {
	var length [4]byte
	if _, err := io.ReadFull(t.reader, length[:]); err != nil {
		return nil, err
	}
	data := make([]byte, binary.BigEndian.Uint32(length[:]))
	if _, err := io.ReadFull(t.reader, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Close closes whichever ends of the transport are present.
func (t *FrameTransport) Close() error {
	var err error
	if t.reader != nil {
		err = t.reader.Close()
	}
	if t.writer != nil {
		if werr := t.writer.Close(); err == nil {
			err = werr
		}
	}
	return err
}
