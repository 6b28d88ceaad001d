package mixnode

import (
	"encoding/binary"
	"io"

	"github.com/fogcompute/platform/fogerr"
	"github.com/fogcompute/platform/sphinx"
)

// lengthPrefixSize is the carrier framing overhead: a 4-byte big-endian
// length followed by exactly sphinx.PacketSize bytes (spec §6).
const lengthPrefixSize = 4

// ReadFrame reads one length-prefixed carrier frame from r. A frame whose
// declared length is not exactly sphinx.PacketSize is dropped: the caller
// should treat the connection as no longer trustworthy and close it, since
// the stream can no longer be reliably re-synchronized.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if n != sphinx.PacketSize {
		return nil, fogerr.New(fogerr.KindMalformed,
			"frame length %d != %d", n, sphinx.PacketSize)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFrame writes one length-prefixed carrier frame to w. packet must be
// exactly sphinx.PacketSize bytes.
func WriteFrame(w io.Writer, packet []byte) error {
	if len(packet) != sphinx.PacketSize {
		return fogerr.New(fogerr.KindMalformed,
			"packet length %d != %d", len(packet), sphinx.PacketSize)
	}

	var lenBuf [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(packet)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(packet)
	return err
}
