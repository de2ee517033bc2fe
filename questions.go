package dnstcp

import "encoding/binary"

// maxNameLen bounds the dot-separated name this package builds while
// walking a question's labels (spec.md §4.2: "a buffer of capacity >= 255
// bytes").
const maxNameLen = 255

// parseOutcome is the three-valued result of attempting to walk a piece
// of a DNS message: success, a structural violation, or simply running
// out of bytes. Spec.md §7 folds outcomeInsufficient into "malformed" at
// the Message Parser's boundary (the Record Framer has already guaranteed
// a complete record by the time either side's parser runs), but the
// Probing Classifier (probe.go) needs the distinction to tell "not DNS"
// apart from "wait for more bytes" on a deliberately incomplete window.
type parseOutcome uint8

const (
	outcomeOK parseOutcome = iota
	outcomeMalformed
	outcomeInsufficient
)

// ok reports whether a parse completed successfully.
func (o parseOutcome) ok() bool { return o == outcomeOK }

// walkQuestions walks qdCount questions starting at offset pos in buf.
//
// In strict mode (permissive == false, the request side) a label length
// byte of 0 terminates the name; any other value must be in (0, 63] or
// the walk fails as malformed — this also rejects a DNS-compression
// pointer (top two bits "11"), which is legal in the wire format but not
// expected here, per spec.md §4.2.
//
// In permissive mode (the response side) any non-zero length byte is
// treated as a raw skip count with no upper bound, and label bytes are
// never copied into a name (spec.md §4.3: "parsed names are not stored").
//
// It returns the offset just past the question section and the parsed
// queries (nil in permissive mode). A cursor running past len(buf) always
// reports outcomeInsufficient; a structural violation in strict mode
// (overlong label, overlong accumulated name) reports outcomeMalformed.
func walkQuestions(buf []byte, pos, qdCount int, permissive bool) (next int, queries []Query, outcome parseOutcome) {
	if !permissive {
		queries = make([]Query, 0, qdCount)
	}

	for q := 0; q < qdCount; q++ {
		var name []byte

		for {
			if pos >= len(buf) {
				return pos, queries, outcomeInsufficient
			}

			length := int(buf[pos])
			pos++

			if length == 0 {
				break
			}

			if !permissive && length > 63 {
				return pos, queries, outcomeMalformed
			}

			if pos+length > len(buf) {
				return pos, queries, outcomeInsufficient
			}

			if !permissive {
				if len(name)+length+1 >= maxNameLen {
					return pos, queries, outcomeMalformed
				}
				if len(name) > 0 {
					name = append(name, '.')
				}
				name = append(name, buf[pos:pos+length]...)
			}

			pos += length
		}

		// 2-byte qtype, 2-byte qclass trailer.
		if pos+4 > len(buf) {
			return pos, queries, outcomeInsufficient
		}

		if !permissive {
			queries = append(queries, Query{
				Name:   string(name),
				QType:  binary.BigEndian.Uint16(buf[pos : pos+2]),
				QClass: binary.BigEndian.Uint16(buf[pos+2 : pos+4]),
			})
		}
		pos += 4
	}

	return pos, queries, outcomeOK
}
