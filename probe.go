package dnstcp

import "encoding/binary"

// Verdict is the Probing Classifier's answer about whether a flow's
// leading bytes look like DNS-over-TCP.
type Verdict uint8

const (
	// NeedMore means not enough bytes have arrived yet to decide.
	NeedMore Verdict = iota
	// NotDNS means these bytes are not a DNS-over-TCP record.
	NotDNS
	// DNSTCP means these bytes are (the start of) a DNS-over-TCP record.
	DNSTCP
)

// probeDryRunThreshold is the input length past which, if the declared
// record length still exceeds what's available, the classifier gives up
// waiting and assumes DNS-over-TCP: spec.md §4.4 reasons that a real DNS
// record would have produced parse progress (or a MALFORMED verdict) by
// this point.
const probeDryRunThreshold = 512

// Probe inspects the first bytes of a new flow's client-to-server
// direction and decides whether they look like DNS-over-TCP. It never
// mutates state: every call is a dry-run (no-state-writes) request parse.
func Probe(input []byte) Verdict {
	if len(input) < 2 {
		return NeedMore
	}

	declared := int(binary.BigEndian.Uint16(input[0:2]))
	if declared < headerLen {
		return NotDNS
	}

	available := len(input) - 2

	if declared > available {
		_, _, outcome := parseRequest(input[2:])
		if outcome == outcomeMalformed {
			return NotDNS
		}
		if len(input) > probeDryRunThreshold {
			return DNSTCP
		}
		return NeedMore
	}

	_, _, outcome := parseRequest(input[2 : 2+declared])
	if outcome.ok() {
		return DNSTCP
	}
	return NotDNS
}
