package dnstcp

import "github.com/prometheus/client_golang/prometheus"

// Metrics give the enclosing pipeline an aggregate, scrapeable view of
// what this package's decoder events only record per-flow. They are
// grounded on the counter style used throughout straticus1-dnsscienced's
// rate limiter and gRPC middleware (prometheus.CounterVec / GaugeVec
// registered at package init, incremented inline with the hot path).
var (
	decoderEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnstcp_decoder_events_total",
			Help: "Decoder events raised by the DNS-over-TCP parser, by event tag.",
		},
		[]string{"event"},
	)

	transactionsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dnstcp_transactions_inflight",
			Help: "Transactions awaiting either a matching response or reap, per flow.",
		},
		[]string{"flow"},
	)

	recordsParsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnstcp_records_parsed_total",
			Help: "DNS-TCP records successfully parsed, by direction.",
		},
		[]string{"direction"},
	)
)

func init() {
	prometheus.MustRegister(decoderEventsTotal, transactionsInFlight, recordsParsedTotal)
}
