package codec

// SuperFrameMode controls how multi-subframe packets are surfaced.
type SuperFrameMode uint8

const (
	SuperFrameShowAll SuperFrameMode = 0

	// HideSubFrames asks the manager to swallow a non-displayable subframe
	// and resubmit the packet once.
	HideSubFrames SuperFrameMode = 2
)

// InitParam is what the core receives as p1 on INIT.
type InitParam struct {
	Instance     int
	Capabilities Capabilities
	WorkAddr     uint64
	WorkSize     int

	// Open is passed through from the caller untouched.
	Open any
}

// SeqHeaderParam carries the stream header bytes.
type SeqHeaderParam struct {
	Bitstream []byte
}

// SeqInfo is filled by the core on SEQ_HEADER.
type SeqInfo struct {
	Width           int
	Height          int
	MinFrameBuffers int
	Profile         int
}

// DecodeParam describes one decode step.
type DecodeParam struct {
	Bitstream  []byte
	SuperFrame SuperFrameMode
	SkipMode   int
}

// InputSize returns the number of input bytes carried by p.
func (p *DecodeParam) InputSize() int {
	if p == nil {
		return 0
	}
	return len(p.Bitstream)
}

// NoDisplay marks DecodeOutput.DisplayIndex when nothing is displayable.
const NoDisplay = -1

// DecodeOutput is filled by the core on DECODE, GET_OUTPUT_INFO and FLUSH_OUTPUT.
type DecodeOutput struct {
	DisplayIndex  int
	DecodedIndex  int
	SubFrameCount int
	Consumed      int
}

// Displayable reports whether the step produced a frame for display.
func (o *DecodeOutput) Displayable() bool {
	return o != nil && o.DisplayIndex >= 0
}

// FrameBuffers is the set registered with REGISTER_FRAME_BUFFER.
type FrameBuffers struct {
	Addrs  []uint64
	Stride int
	Height int
}

// FrameIndex names one registered frame buffer.
type FrameIndex struct {
	Index int
}

// RingBuffer is filled by GET_BITSTREAM_BUFFER.
type RingBuffer struct {
	ReadAddr  uint64
	WriteAddr uint64
	Room      int
}

// RingUpdate reports bytes written into the ring by UPDATE_BITSTREAM_BUFFER.
type RingUpdate struct {
	Size int
}

// Version is filled by GET_VERSION.
type Version struct {
	Major, Minor, Patch int
	Revision            uint32
}
