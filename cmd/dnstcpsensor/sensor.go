package main

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/jmanero/go-logging"
	"go.uber.org/zap"

	"github.com/sigcap/dnstcp"
	"github.com/sigcap/dnstcp/queue"
)

// Sensor passively reassembles and parses DNS-over-TCP traffic from
// accepted connections, standing in for a tap or mirror-port feed in
// place of the two-way proxying jmanero-go-dns's Server does. Each
// accepted net.Conn is read as a single to-server byte stream; Queue
// decouples the connection-reading goroutines from the worker pool that
// actually runs dnstcp.ProcessChunk, the same separation tmqh-simple.c
// draws between a thread module's input and output handlers.
type Sensor struct {
	Queue   *queue.Queue
	Workers int

	flowSeq atomic.Uint64

	mu    sync.Mutex
	flows map[uint64]*dnstcp.FlowDNSState
}

// NewSensor builds a Sensor with a bounded handoff queue of the given
// depth and the given number of worker goroutines draining it.
func NewSensor(queueDepth, workers int) *Sensor {
	return &Sensor{
		Queue:   queue.New(queueDepth),
		Workers: workers,
		flows:   make(map[uint64]*dnstcp.FlowDNSState),
	}
}

// Run starts the worker pool and blocks until ctx is done, at which point
// it closes the queue and waits for workers to drain it.
func (s *Sensor) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < s.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.work(ctx)
		}()
	}

	<-ctx.Done()
	s.Queue.Close()
	wg.Wait()
}

// work pulls Items off the queue and runs them through ProcessChunk until
// the queue reports it's closed and drained.
func (s *Sensor) work(ctx context.Context) {
	for {
		item, ok := s.Queue.Out()
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		state := s.stateFor(item.FlowID)
		result := dnstcp.ProcessChunk(ctx, dnstcp.Direction(item.Direction), state, item.Data)

		if result == dnstcp.FrameMalformed {
			logging.Warn(ctx, "dnstcpsensor.malformed",
				zap.Uint64("flow", item.FlowID), zap.Uint64("seq", item.Seq))
		}
	}
}

// stateFor returns the FlowDNSState for id, allocating one on first use.
func (s *Sensor) stateFor(id uint64) *dnstcp.FlowDNSState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.flows[id]
	if !ok {
		state = dnstcp.NewFlowDNSState(id)
		s.flows[id] = state
	}
	return state
}

// Forget releases a flow's reassembly state, e.g. once its connection has
// closed. Callers are responsible for not doing this while a chunk from
// the flow is still in flight through Queue.
func (s *Sensor) Forget(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.flows[id]; ok {
		state.Free()
		delete(s.flows, id)
	}
}

// Accept assigns a flow id to conn and copies its bytes into the Queue as
// they arrive, one Item per Read. It never parses anything itself; that
// is entirely the worker pool's job.
func (s *Sensor) Accept(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	id := s.flowSeq.Add(1)
	defer s.Forget(id)

	ctx, logger := logging.With(ctx, zap.Uint64("flow", id), zap.Stringer("remote", conn.RemoteAddr()))
	logger.Info("accepted")
	defer logger.Info("closed")

	buf := dnstcp.GetBuffer(4096, 4096)
	defer dnstcp.FreeBuffer(buf)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.Queue.In(id, uint8(dnstcp.ToServer), chunk)
		}

		if err != nil {
			if err != io.EOF {
				logger.Warn("read", zap.Error(err))
			}
			return
		}
	}
}
