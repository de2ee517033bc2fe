package dnstcp

import (
	"context"

	"github.com/jmanero/go-logging"
	"go.uber.org/zap"
)

// ParseRequest validates a complete DNS-over-TCP request record — the
// bytes of exactly one message, with its 2-byte length prefix already
// stripped off by the Record Framer — and, if store is non-nil, records
// its queries as a new Transaction.
//
// Passing store == nil performs a dry-run parse (glossary: "Dry-run
// parse"): every bounds check and structural validation below still
// runs, but no state is written. The Probing Classifier (probe.go) calls
// parseRequest directly instead, since it needs to tell a structural
// violation apart from simply running out of bytes; ParseRequest folds
// that distinction away, per spec.md §4.2/§7.
func ParseRequest(ctx context.Context, store *FlowDNSState, buf []byte) bool {
	hdr, queries, outcome := parseRequest(buf)

	if !outcome.ok() {
		if store != nil {
			store.raise(EventMalformedRequestHeader)
			logging.Error(ctx, "dnstcp.malformed_request_header",
				zap.Uint16("tx_id", hdr.id),
				zap.Bool("qr", hdr.isResponse()),
				zap.Uint16("opcode", hdr.opCode()),
				zap.Uint16("qdcount", hdr.qdCount))
		}
		return false
	}

	if hdr.zSet() && store != nil {
		store.raise(EventZFlagSet)
	}

	if store == nil {
		return true
	}

	store.transactions = append(store.transactions, &Transaction{TxID: hdr.id, Queries: queries})
	store.transactionCnt++

	transactionsInFlight.WithLabelValues(flowLabel(store.ID)).Set(float64(len(store.transactions)))
	recordsParsedTotal.WithLabelValues(ToServer.String()).Inc()

	return true
}

// parseRequest does the structural work behind ParseRequest without
// touching a FlowDNSState, so the Probing Classifier can distinguish
// outcomeMalformed from outcomeInsufficient on a deliberately truncated
// buffer (spec.md §4.4).
func parseRequest(buf []byte) (hdr rawHeader, queries []Query, outcome parseOutcome) {
	if len(buf) < headerLen {
		return rawHeader{}, nil, outcomeInsufficient
	}

	hdr = decodeHeader(buf)

	if hdr.isResponse() || opCodeReserved(hdr.opCode()) || hdr.qdCount == 0 {
		return hdr, nil, outcomeMalformed
	}

	_, queries, outcome = walkQuestions(buf, headerLen, int(hdr.qdCount), false)
	return hdr, queries, outcome
}
