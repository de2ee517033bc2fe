package dnstcp

import (
	"context"
	"encoding/binary"
	"errors"
)

// FrameResult is the Record Framer's three-valued outcome for one call,
// re-expressing the goto-based bad_data/insufficient_data control flow in
// app-layer-dns-tcp.c as a small enum per the design note in spec.md §9:
// NeedMore and Malformed carry different semantics (resume vs. give up)
// and must stay distinguishable by callers.
type FrameResult uint8

const (
	FrameOK FrameResult = iota
	FrameMalformed
	FrameNeedMore
)

// errRecordOverflow is returned internally when appending to a record's
// assembly buffer would exceed MaxRecordSize. Go's slice bounds make this
// structurally unreachable through ProcessChunk's normal paths (a 16-bit
// length prefix can never declare more than MaxRecordSize bytes), but the
// check is kept as an invariant guard — spec.md §6 names RECORD_OVERFLOW
// as a decoder event a conforming implementation must be able to emit,
// and §4.1 asks for a reset-and-event response rather than the source's
// silent clip-and-continue.
var errRecordOverflow = errors.New("dnstcp: record assembly buffer overflow")

// ProcessChunk feeds one chunk of bytes, already in TCP byte order for
// direction dir, into the Record Framer for state. It decides whether the
// chunk contains zero, one, or multiple complete records, buffering
// partial records in state (via the Byte-Buffer Assembler) and parsing
// complete ones through the Message Parser (request.go/response.go),
// re-entering itself for any trailing bytes that begin a new record.
func ProcessChunk(ctx context.Context, dir Direction, state *FlowDNSState, input []byte) FrameResult {
	ra := state.assembly(dir)

	for {
		if len(input) == 0 {
			// Probably a RST/FIN-driven EOF signal; no state change.
			return FrameNeedMore
		}

		if ra.idle() {
			result, rest, handled := startRecord(ctx, dir, state, ra, input)
			if !handled {
				return result
			}
			input = rest
			continue
		}

		result, rest, reentered := continueRecord(ctx, dir, state, ra, input)
		if !reentered {
			return result
		}
		input = rest
	}
}

// startRecord handles the idle-state rows of the framing table: input
// begins a fresh record. handled is true only when a complete record was
// parsed and there are (potentially) trailing bytes to re-examine as the
// start of another one.
func startRecord(ctx context.Context, dir Direction, state *FlowDNSState, ra *recordAssembly, input []byte) (result FrameResult, rest []byte, handled bool) {
	if len(ra.buffer) == 1 {
		// A lone length-prefix byte held back from the previous chunk;
		// see DESIGN.md's Open Question 1 resolution.
		input = append([]byte{ra.buffer[0]}, input...)
		FreeBuffer(ra.buffer)
		ra.buffer = nil
	}

	if len(input) < 2 {
		// Only the first byte of the 2-byte length prefix has arrived:
		// hold it in ra until the second one does.
		ra.buffer = append(GetBuffer(1, 0), input...)
		return FrameNeedMore, nil, false
	}

	declared := int(binary.BigEndian.Uint16(input[0:2]))
	if declared < headerLen {
		return FrameMalformed, nil, false
	}

	available := len(input) - 2

	switch {
	case available == declared:
		return parseRecord(ctx, dir, state, input[2:2+declared]), nil, false

	case available > declared:
		result := parseRecord(ctx, dir, state, input[2:2+declared])
		if result != FrameOK {
			return result, nil, false
		}
		return FrameOK, input[2+declared:], true

	default: // available < declared
		if err := beginBuffered(ra, declared, input[2:]); err != nil {
			state.raise(EventRecordOverflow)
			return FrameMalformed, nil, false
		}
		return FrameOK, nil, false
	}
}

// continueRecord handles the mid-record rows of the framing table: a
// record is already partially buffered in ra.
func continueRecord(ctx context.Context, dir Direction, state *FlowDNSState, ra *recordAssembly, input []byte) (result FrameResult, rest []byte, reentered bool) {
	need := ra.recordLen - ra.offset

	switch {
	case len(input) < need:
		if err := appendBuffered(ra, input); err != nil {
			state.raise(EventRecordOverflow)
			ra.reset()
			return FrameMalformed, nil, false
		}
		return FrameOK, nil, false

	case len(input) == need:
		if err := appendBuffered(ra, input); err != nil {
			state.raise(EventRecordOverflow)
			ra.reset()
			return FrameMalformed, nil, false
		}
		buf := ra.buffer[:ra.recordLen]
		result := parseRecord(ctx, dir, state, buf)
		ra.reset()
		return result, nil, false

	default: // len(input) > need
		if err := appendBuffered(ra, input[:need]); err != nil {
			state.raise(EventRecordOverflow)
			ra.reset()
			return FrameMalformed, nil, false
		}
		buf := ra.buffer[:ra.recordLen]
		result := parseRecord(ctx, dir, state, buf)
		ra.reset()
		if result != FrameOK {
			return result, nil, false
		}
		return FrameOK, input[need:], true
	}
}

// beginBuffered starts assembling a new record of declared length,
// buffering the data that arrived with its length prefix.
func beginBuffered(ra *recordAssembly, declared int, data []byte) error {
	if declared > MaxRecordSize {
		return errRecordOverflow
	}
	ra.begin(declared)
	ra.append(data)
	return nil
}

// appendBuffered appends to an in-progress record's assembly buffer.
func appendBuffered(ra *recordAssembly, data []byte) error {
	if ra.offset+len(data) > MaxRecordSize {
		return errRecordOverflow
	}
	ra.append(data)
	return nil
}

// parseRecord dispatches a complete record to the request- or
// response-side Message Parser based on direction.
func parseRecord(ctx context.Context, dir Direction, state *FlowDNSState, buf []byte) FrameResult {
	var ok bool
	if dir == ToServer {
		ok = ParseRequest(ctx, state, buf)
	} else {
		ok = ParseResponse(ctx, state, buf)
	}
	if !ok {
		return FrameMalformed
	}
	return FrameOK
}
