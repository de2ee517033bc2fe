package dnstcp

import (
	"context"

	"github.com/jmanero/go-logging"
	"go.uber.org/zap"
	"golang.org/x/net/dns/dnsmessage"
)

// ParseResponse validates a complete DNS-over-TCP response record and
// correlates it with an outstanding Transaction by transaction id.
//
// A response with no matching transaction still has its answer and
// authority sections parsed (spec.md §4.3: "continue parsing so that
// useful intelligence is still extracted"); only EventUnsolicitedResponse
// is raised, and nothing is stored for it.
func ParseResponse(ctx context.Context, store *FlowDNSState, buf []byte) bool {
	if len(buf) < headerLen {
		return false
	}

	hdr := decodeHeader(buf)

	// hdr.rCode() already masks the flags word to 4 bits, so this
	// can never actually fail without EDNS OPT extended-rcode support
	// (out of scope per spec.md's Non-goals); kept because spec.md §4.3
	// names the check explicitly as part of response header validation.
	if !hdr.isResponse() || hdr.rCode() > 0xF {
		store.raise(EventMalformedResponseHeader)
		logging.Error(ctx, "dnstcp.malformed_response_header", zap.Uint16("tx_id", hdr.id))
		return false
	}

	if hdr.zSet() {
		store.raise(EventZFlagSet)
	}

	tx := store.Find(hdr.id)
	if tx == nil {
		store.raise(EventUnsolicitedResponse)
		logging.Debug(ctx, "dnstcp.unsolicited_response", zap.Uint16("tx_id", hdr.id))
	}

	// Permissive question walk: tolerates a label length byte over 63
	// (spec.md §4.3's documented echo-quirk exception), discarding names.
	if _, _, outcome := walkQuestions(buf, headerLen, int(hdr.qdCount), true); !outcome.ok() {
		store.raise(EventMalformedResponseHeader)
		return false
	}

	answers, authorities, ok := parseResourceSections(buf, hdr)
	if !ok {
		store.raise(EventMalformedResponseData)
		logging.Debug(ctx, "dnstcp.malformed_response_data", zap.Uint16("tx_id", hdr.id))
	}

	if tx != nil {
		tx.Answers = append(tx.Answers, answers...)
		tx.Authorities = append(tx.Authorities, authorities...)
		tx.ReplySeen = true
	}

	recordsParsedTotal.WithLabelValues(ToClient.String()).Inc()
	return true
}

// parseResourceSections delegates answer and authority RR decoding to the
// shared DNS message library (spec.md §1/§4.3), which this package never
// reimplements: name decompression across the whole message is exactly
// the "name-compression table building" the spec explicitly keeps out of
// this package's own question walker.
//
// dnsmessage.Parser must re-walk the question section itself to position
// its cursor at the start of the answer section; in the adversarial case
// where that section contains the permissive-mode label quirk tolerated
// above, the library's own strict walk can fail where ours didn't. When
// that happens extraction simply stops here, per the Open Question
// resolution in DESIGN.md — whatever was already recorded (the matched
// transaction, any UNSOLICITED_RESPONSE event) still stands.
func parseResourceSections(buf []byte, hdr rawHeader) (answers, authorities []ResourceRecord, ok bool) {
	var p dnsmessage.Parser
	if _, err := p.Start(buf); err != nil {
		return nil, nil, false
	}
	if err := p.SkipAllQuestions(); err != nil {
		return nil, nil, false
	}

	for i := 0; i < int(hdr.anCount); i++ {
		rr, err := p.Answer()
		if err != nil {
			return answers, authorities, false
		}
		answers = append(answers, ResourceRecord{Header: rr.Header, Body: rr.Body})
	}

	for i := 0; i < int(hdr.nsCount); i++ {
		rr, err := p.Authority()
		if err != nil {
			return answers, authorities, false
		}
		authorities = append(authorities, ResourceRecord{Header: rr.Header, Body: rr.Body})
	}

	return answers, authorities, true
}
