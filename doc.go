// Package dnstcp reassembles and parses DNS-over-TCP records from an
// already-reassembled, ordered byte stream in each direction of a TCP flow.
//
// It does not do TCP reassembly itself — that is the job of the enclosing
// intrusion-detection pipeline's stream engine, which hands this package
// ordered chunks per direction via ProcessChunk. It does not resolve names,
// cache answers, or validate DNSSEC signatures; it extracts queries and
// resource records and correlates requests with responses by transaction
// id, for a downstream rule engine to inspect.
package dnstcp
