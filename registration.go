package dnstcp

import "context"

// RequestParserFunc matches ParseRequest's signature: the client-to-server
// direction's entry point into the Message Parser.
type RequestParserFunc func(ctx context.Context, store *FlowDNSState, buf []byte) bool

// ResponseParserFunc matches ParseResponse's signature: the
// server-to-client direction's entry point.
type ResponseParserFunc func(ctx context.Context, store *FlowDNSState, buf []byte) bool

// Descriptor is the registration tuple spec.md §6 describes in prose: a
// protocol name/id, its per-direction parser functions, state
// allocate/free callbacks, and transaction-id update/free callbacks. A
// real application-protocol registry (out of scope per spec.md §1) takes
// a Descriptor and wires this package's parsers into its dispatch table,
// the same role RegisterDNSTCPParsers plays against Suricata's own
// AppLayerParserRegisterProtocolParsers registry.
type Descriptor struct {
	ProtoName string
	ProtoID   uint16

	RequestParser  RequestParserFunc
	ResponseParser ResponseParserFunc

	AllocState func(id uint64) *FlowDNSState
	FreeState  func(state *FlowDNSState)

	// UpdateTxID and FreeTxID mirror DNSStateUpdateTransactionId and
	// DNSStateTransactionFree: the registry calls these after each parse
	// to learn how far transaction processing has advanced, and to tell
	// this package a transaction has been fully consumed downstream.
	UpdateTxID func(state *FlowDNSState, externalID *uint16)
	FreeTxID   func(state *FlowDNSState, id uint16)
}

// NewDescriptor builds the Descriptor this package registers itself
// under. Callers embed the result into whatever registry their pipeline
// uses; this package has no registry of its own (spec.md's Non-goals).
func NewDescriptor() Descriptor {
	return Descriptor{
		ProtoName:      "dnstcp",
		RequestParser:  ParseRequest,
		ResponseParser: ParseResponse,
		AllocState:     NewFlowDNSState,
		FreeState:      func(state *FlowDNSState) { state.Free() },
		UpdateTxID:     func(state *FlowDNSState, externalID *uint16) { state.UpdateID(externalID) },
		FreeTxID:       func(state *FlowDNSState, id uint16) { state.MarkDone(id) },
	}
}

// Probing-parser priority levels, mirroring Suricata's
// APP_LAYER_PROBING_PARSER_PRIORITY_* ordering: higher values win when
// more than one probing parser claims the same bytes.
const (
	PriorityLow = iota
	PriorityMedium
	PriorityHigh
)

// Probe is the probing-parser registration tuple from spec.md §6: port,
// transport, minimum byte count before probing is attempted, direction,
// and priority relative to other probing parsers on the same port.
type Probe struct {
	Port      uint16
	Transport string
	MinBytes  int
	Direction Direction
	Priority  int
}

// ProbeDescriptor is the probing-parser registration this package
// expects to be installed under, matching DNSTcpProbingParser's
// registration in RegisterDNSTCPParsers: port 53, TCP, at least the
// 2-byte length prefix, checked on the to-server direction.
var ProbeDescriptor = Probe{
	Port:      53,
	Transport: "tcp",
	MinBytes:  2,
	Direction: ToServer,
	Priority:  PriorityHigh,
}
