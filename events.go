package dnstcp

// Event is a decoder-event tag raised on a flow to flag a protocol
// anomaly for downstream rule engines. Events are observations, not
// aborts: raising one never by itself stops parsing (§7).
type Event string

const (
	// EventUnsolicitedResponse is raised when a response's transaction id
	// does not match any transaction this flow has seen a request for.
	EventUnsolicitedResponse Event = "UNSOLICITED_RESPONSE"
	// EventMalformedRequestHeader is raised when a request's 12-byte
	// header fails validation (QR set, reserved opcode, qdcount == 0) or
	// its question section cannot be walked (e.g. a label longer than 63).
	EventMalformedRequestHeader Event = "MALFORMED_REQUEST_HEADER"
	// EventMalformedResponseHeader is raised when a response's header
	// fails validation (QR unset, rcode out of range) or its question
	// section cannot be walked.
	EventMalformedResponseHeader Event = "MALFORMED_RESPONSE_HEADER"
	// EventMalformedResponseData is raised when the answer/authority
	// section cannot be walked to completion.
	EventMalformedResponseData Event = "MALFORMED_RESPONSE_DATA"
	// EventRecordOverflow is raised when a record would need to grow its
	// assembly buffer past MaxRecordSize.
	EventRecordOverflow Event = "RECORD_OVERFLOW"
	// EventZFlagSet is raised when the reserved header bit (Z) is set.
	EventZFlagSet Event = "Z_FLAG_SET"
)

// raise appends an event to the flow's event set and counts it in the
// decoder_events metric. Suricata-style decoder events are a log, not a
// set: the same tag can legitimately fire more than once across the life
// of a flow, so no deduplication happens here.
func (s *FlowDNSState) raise(ev Event) {
	s.events = append(s.events, ev)
	decoderEventsTotal.WithLabelValues(string(ev)).Inc()
}

// Events returns the decoder events raised on this flow so far, in the
// order they were raised.
func (s *FlowDNSState) Events() []Event {
	return s.events
}

// HasEvent reports whether ev has been raised at least once on this flow.
func (s *FlowDNSState) HasEvent(ev Event) bool {
	for _, e := range s.events {
		if e == ev {
			return true
		}
	}
	return false
}
