package dnstcp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeNeedsMoreBytes(t *testing.T) {
	assert.Equal(t, NeedMore, Probe(nil))
	assert.Equal(t, NeedMore, Probe([]byte{0x00}))
}

func TestProbeRejectsShortDeclaredLength(t *testing.T) {
	framed := make([]byte, 2)
	binary.BigEndian.PutUint16(framed, 4)
	assert.Equal(t, NotDNS, Probe(framed))
}

func TestProbeAcceptsWellFormedQuery(t *testing.T) {
	body := make([]byte, headerLen)
	binary.BigEndian.PutUint16(body[2:4], 0x0100)
	binary.BigEndian.PutUint16(body[4:6], 1)
	body = append(body, 0x03, 'w', 'w', 'w', 0x00, 0x00, 0x01, 0x00, 0x01)

	framed := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(framed, uint16(len(body)))
	copy(framed[2:], body)

	assert.Equal(t, DNSTCP, Probe(framed))
}

func TestProbeWaitsOnIncompleteRecordBelowThreshold(t *testing.T) {
	body := make([]byte, headerLen)
	binary.BigEndian.PutUint16(body[2:4], 0x0100)
	binary.BigEndian.PutUint16(body[4:6], 1)
	body = append(body, 60) // label claims 60 bytes, far fewer actually follow
	body = append(body, make([]byte, 37)...)

	framed := make([]byte, 2)
	binary.BigEndian.PutUint16(framed, 200) // declared record length, not yet fully arrived
	framed = append(framed, body...)

	assert.Equal(t, NeedMore, Probe(framed))
}
