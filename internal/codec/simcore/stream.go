package simcore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/vazrupe/endibuf"
)

// Simulated stream layout, all fields big-endian.
//
// Sequence header (12 bytes):
//
//	0-3   "VSEQ"
//	4-5   width
//	6-7   height
//	8-9   minimum frame buffers
//	10-11 profile
//
// Packet (8-byte header, then payload):
//
//	0-3   "VPKT"
//	4-5   subframe count (>= 1)
//	6-7   show mask, bit i set when subframe i is displayable
const (
	seqMagic = "VSEQ"
	pktMagic = "VPKT"

	SeqHeaderLen = 12
	PacketHdrLen = 8

	// MaxSubFrames bounds the show mask.
	MaxSubFrames = 16
)

var (
	errShort    = errors.New("simcore: short stream")
	errBadMagic = errors.New("simcore: bad magic")
)

// SeqHeader is a parsed sequence header.
type SeqHeader struct {
	Width, Height   int
	MinFrameBuffers int
	Profile         int
}

// PacketHeader is a parsed packet header.
type PacketHeader struct {
	SubFrames int
	ShowMask  uint16
}

// Shown reports whether subframe i is displayable.
func (p PacketHeader) Shown(i int) bool { return p.ShowMask&(1<<uint(i)) != 0 }

func newReader(b []byte) *endibuf.Reader {
	base := bytes.NewReader(b)
	r := endibuf.NewReader(io.NewSectionReader(base, 0, base.Size()))
	r.Endian = binary.BigEndian
	return r
}

func readMagic(r *endibuf.Reader, want string) error {
	sig, err := r.ReadBytes(len(want))
	if err != nil {
		return errShort
	}
	if string(sig) != want {
		return errBadMagic
	}
	return nil
}

// ParseSeqHeader decodes a sequence header.
func ParseSeqHeader(b []byte) (SeqHeader, error) {
	if len(b) < SeqHeaderLen {
		return SeqHeader{}, errShort
	}
	r := newReader(b)
	if err := readMagic(r, seqMagic); err != nil {
		return SeqHeader{}, err
	}

	var f [4]uint16
	for i := range f {
		v, err := r.ReadUint16()
		if err != nil {
			return SeqHeader{}, errShort
		}
		f[i] = v
	}
	return SeqHeader{
		Width:           int(f[0]),
		Height:          int(f[1]),
		MinFrameBuffers: int(f[2]),
		Profile:         int(f[3]),
	}, nil
}

// ParsePacket decodes a packet header.
func ParsePacket(b []byte) (PacketHeader, error) {
	if len(b) < PacketHdrLen {
		return PacketHeader{}, errShort
	}
	r := newReader(b)
	if err := readMagic(r, pktMagic); err != nil {
		return PacketHeader{}, err
	}

	n, err := r.ReadUint16()
	if err != nil {
		return PacketHeader{}, errShort
	}
	mask, err := r.ReadUint16()
	if err != nil {
		return PacketHeader{}, errShort
	}
	if n == 0 || n > MaxSubFrames {
		return PacketHeader{}, errBadMagic
	}
	return PacketHeader{SubFrames: int(n), ShowMask: mask}, nil
}

// EncodeSeqHeader builds a sequence header.
func EncodeSeqHeader(h SeqHeader) []byte {
	b := make([]byte, 0, SeqHeaderLen)
	b = append(b, seqMagic...)
	b = binary.BigEndian.AppendUint16(b, uint16(h.Width))
	b = binary.BigEndian.AppendUint16(b, uint16(h.Height))
	b = binary.BigEndian.AppendUint16(b, uint16(h.MinFrameBuffers))
	return binary.BigEndian.AppendUint16(b, uint16(h.Profile))
}

// EncodePacket builds a packet carrying payload.
func EncodePacket(h PacketHeader, payload []byte) []byte {
	b := make([]byte, 0, PacketHdrLen+len(payload))
	b = append(b, pktMagic...)
	b = binary.BigEndian.AppendUint16(b, uint16(h.SubFrames))
	b = binary.BigEndian.AppendUint16(b, h.ShowMask)
	return append(b, payload...)
}
