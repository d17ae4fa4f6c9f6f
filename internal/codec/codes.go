package codec

import "fmt"

// Op is an operation code understood by the codec core.
type Op uint8

const (
	OpInit Op = iota
	OpSeqHeader
	OpDecode
	OpRegisterFrameBuffer
	OpGetOutputInfo
	OpBufferFlagClear
	OpFlushOutput
	OpGetBitstreamBuffer
	OpUpdateBitstreamBuffer
	OpGetVersion
	OpSoftReset
	OpClose

	opCount
)

var opNames = [...]string{
	OpInit:                  "INIT",
	OpSeqHeader:             "SEQ_HEADER",
	OpDecode:                "DECODE",
	OpRegisterFrameBuffer:   "REGISTER_FRAME_BUFFER",
	OpGetOutputInfo:         "GET_OUTPUT_INFO",
	OpBufferFlagClear:       "BUFFER_FLAG_CLEAR",
	OpFlushOutput:           "FLUSH_OUTPUT",
	OpGetBitstreamBuffer:    "GET_BITSTREAM_BUFFER",
	OpUpdateBitstreamBuffer: "UPDATE_BITSTREAM_BUFFER",
	OpGetVersion:            "GET_VERSION",
	OpSoftReset:             "SOFT_RESET",
	OpClose:                 "CLOSE",
}

func (o Op) String() string {
	if o < opCount {
		return opNames[o]
	}
	return fmt.Sprintf("OP(%d)", uint8(o))
}

// Valid reports whether o is a known operation code.
func (o Op) Valid() bool { return o < opCount }

// Result is the scalar result code returned by the codec core and
// propagated unchanged to the caller.
type Result int32

const (
	Success Result = iota
	Failure
	InvalidParam
	InsufficientBitstream
	InsufficientBitstreamBuf
	CodecExit
	MultiCodecExitTimeout
	BufFull
	VP9SuperFrame
	InsufficientMemory
)

var resultNames = map[Result]string{
	Success:                  "SUCCESS",
	Failure:                  "FAILURE",
	InvalidParam:             "INVALID_PARAM",
	InsufficientBitstream:    "INSUFFICIENT_BITSTREAM",
	InsufficientBitstreamBuf: "INSUFFICIENT_BITSTREAM_BUF",
	CodecExit:                "CODEC_EXIT",
	MultiCodecExitTimeout:    "MULTI_CODEC_EXIT_TIMEOUT",
	BufFull:                  "BUF_FULL",
	VP9SuperFrame:            "VP9_SUPER_FRAME",
	InsufficientMemory:       "INSUFFICIENT_MEMORY",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("RESULT(%d)", int32(r))
}

// Fatal reports whether r invalidates the presumed hardware state.
func (r Result) Fatal() bool { return r == CodecExit }

// Recoverable reports whether r is an ordinary "feed me more" condition.
func (r Result) Recoverable() bool {
	return r == InsufficientBitstream || r == InsufficientBitstreamBuf
}
