package dnstcp

import "golang.org/x/net/dns/dnsmessage"

// Direction identifies which side of a TCP flow a chunk of bytes arrived
// on.
type Direction uint8

const (
	// ToServer is the client-to-server direction: DNS queries.
	ToServer Direction = iota
	// ToClient is the server-to-client direction: DNS responses.
	ToClient
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case ToServer:
		return "to_server"
	case ToClient:
		return "to_client"
	default:
		return "unknown"
	}
}

// Query is one parsed question from a request's question section.
type Query struct {
	// Name is the fully-qualified domain name, dot-separated, with no
	// trailing dot.
	Name   string
	QType  uint16
	QClass uint16
}

// ResourceRecord is an answer or authority record extracted from a
// response. It is opaque to this package beyond what Header exposes: the
// record's rdata is whatever the shared DNS message library decoded it
// into (an A/AAAA/CNAME/... resource, or UnknownResource for anything it
// doesn't special-case), per spec.md §4.3's delegation to that library.
type ResourceRecord struct {
	Header dnsmessage.ResourceHeader
	Body   dnsmessage.ResourceBody
}

// Transaction is a request, and optionally its matching response,
// correlated by 16-bit DNS transaction id.
type Transaction struct {
	TxID uint16

	Queries     []Query
	Answers     []ResourceRecord
	Authorities []ResourceRecord

	// ReplySeen is set once a response with a matching TxID has been
	// parsed.
	ReplySeen bool
}

// recordAssembly is the Byte-Buffer Assembler state for one direction of
// one flow: it accumulates bytes until a full length-prefixed record is
// available.
//
// Invariant: offset <= recordLen <= MaxRecordSize.
// Invariant: recordLen == 0 iff no record is in progress.
// Invariant: buffer is non-nil whenever offset > 0.
//
// While idle, buffer may hold a single byte: the first half of a length
// prefix whose second byte has not arrived yet (see startRecord).
type recordAssembly struct {
	buffer    []byte
	recordLen int
	offset    int
}

// idle reports whether no record is currently being assembled. recordLen,
// not offset, is the authoritative flag: begin() sets recordLen before any
// body bytes have arrived, so a chunk containing only the 2-byte length
// prefix leaves offset at 0 with a record already in progress.
func (ra *recordAssembly) idle() bool {
	return ra.recordLen == 0
}

// reset discards any partially assembled record, returning its buffer to
// the pool.
func (ra *recordAssembly) reset() {
	if ra.buffer != nil {
		FreeBuffer(ra.buffer)
		ra.buffer = nil
	}
	ra.recordLen = 0
	ra.offset = 0
}

// begin starts assembling a new record of the given declared length.
func (ra *recordAssembly) begin(recordLen int) {
	ra.buffer = GetBuffer(recordLen, 0)
	ra.recordLen = recordLen
	ra.offset = 0
}

// append copies data onto the end of the in-progress record, growing the
// backing buffer as needed. It never writes past recordLen; callers are
// responsible for only ever passing at most (recordLen - offset) bytes.
func (ra *recordAssembly) append(data []byte) {
	ra.buffer = GrowBuffer(ra.buffer, ra.recordLen, ra.offset+len(data))
	copy(ra.buffer[ra.offset:], data)
	ra.offset += len(data)
}

// complete reports whether the in-progress record has all of its declared
// bytes.
func (ra *recordAssembly) complete() bool {
	return ra.offset > 0 && ra.offset == ra.recordLen
}

// FlowDNSState is the per-flow reassembly and correlation state shared by
// both directions of a TCP flow. It is owned by the enclosing flow table,
// which is responsible for serializing access to it (see §5: this package
// takes no internal lock on FlowDNSState).
type FlowDNSState struct {
	// ID correlates log lines and metric labels back to the owning flow.
	// It carries no protocol meaning.
	ID uint64

	toServer recordAssembly
	toClient recordAssembly

	transactions    []*Transaction
	transactionCnt  uint16
	transactionDone uint16

	events []Event
}

// NewFlowDNSState allocates reassembly state for a new flow. id is an
// opaque correlation identifier supplied by the flow table.
func NewFlowDNSState(id uint64) *FlowDNSState {
	return &FlowDNSState{ID: id}
}

// Free releases the buffers held by s. Call this from the flow's teardown
// path; in-flight parse calls must have already completed (the flow lock
// serializes this per §5).
func (s *FlowDNSState) Free() {
	s.toServer.reset()
	s.toClient.reset()
	s.transactions = nil
}

// assembly returns the per-direction record assembly state for dir.
func (s *FlowDNSState) assembly(dir Direction) *recordAssembly {
	if dir == ToServer {
		return &s.toServer
	}
	return &s.toClient
}
