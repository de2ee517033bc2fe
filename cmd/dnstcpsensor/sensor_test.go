package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StreamTester is a fake net.Conn that replays a fixed sequence of read
// chunks, adapted from jmanero-go-dns's server_test.go fixture of the
// same name and purpose: feeding a stream handler bytes in controlled,
// arbitrary-sized pieces without a real socket.
type StreamTester struct {
	net.Conn
	chunks [][]byte
}

func (*StreamTester) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IP{127, 0, 0, 1}, Port: 4242}
}

func (st *StreamTester) Read(buf []byte) (n int, _ error) {
	if len(st.chunks) == 0 {
		return 0, io.EOF
	}

	n = copy(buf, st.chunks[0])
	if n == len(st.chunks[0]) {
		st.chunks = st.chunks[1:]
	} else if n == 0 {
		return 0, fmt.Errorf("read 0 bytes")
	} else {
		st.chunks[0] = st.chunks[0][n:]
	}

	return
}

func (st *StreamTester) Close() error { return nil }

func frameRequest(t *testing.T, txID uint16, name string) []byte {
	t.Helper()

	body := make([]byte, 12)
	binary.BigEndian.PutUint16(body[0:2], txID)
	binary.BigEndian.PutUint16(body[2:4], 0x0100)
	binary.BigEndian.PutUint16(body[4:6], 1)

	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			if i > start {
				label := name[start:i]
				body = append(body, byte(len(label)))
				body = append(body, label...)
			}
			start = i + 1
		}
	}
	body = append(body, 0, 0, 1, 0, 1)

	framed := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(framed, uint16(len(body)))
	copy(framed[2:], body)
	return framed
}

func TestSensorAcceptFeedsQueue(t *testing.T) {
	sensor := NewSensor(8, 1)
	framed := frameRequest(t, 0x4242, "probe.example")

	tester := &StreamTester{chunks: [][]byte{framed[:1], framed[1:]}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sensor.Accept(ctx, tester)

	// Accept queues one Item per Read, so the two chunks the fake
	// connection delivers arrive as two Items, reassembly happening
	// downstream in ProcessChunk rather than here.
	require.Equal(t, 2, sensor.Queue.Len())

	first, ok := sensor.Queue.Out()
	require.True(t, ok)
	assert.Equal(t, framed[:1], first.Data)

	second, ok := sensor.Queue.Out()
	require.True(t, ok)
	assert.Equal(t, framed[1:], second.Data)
}

func TestSensorRunProcessesQueuedChunks(t *testing.T) {
	sensor := NewSensor(8, 2)
	framed := frameRequest(t, 0x1111, "run.example")

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sensor.Run(ctx)
		close(done)
	}()

	sensor.Queue.In(1, 0, framed)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run never returned after cancel")
	}
}
