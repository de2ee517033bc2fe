// Command dnstcpsensor is a minimal demonstrator for the dnstcp package:
// it accepts TCP connections on a configured address, feeds their bytes
// through the Record Framer and Message Parser by way of a bounded
// handoff queue, and logs decoder events as they're raised. It does not
// proxy or answer DNS queries — see jmanero-go-dns's own example/main.go
// for that; this is a passive observer, matching spec.md's framing.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/jmanero/go-listen"
	"github.com/jmanero/go-logging"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		bind       = flag.String("listen", "127.0.0.1:8053", "address to accept DNS-over-TCP connections on")
		queueDepth = flag.Int("queue-depth", 256, "maximum chunks buffered between reader and worker goroutines")
		workers    = flag.Int("workers", 4, "worker goroutines draining the handoff queue")
		shutdown   = flag.Duration("shutdown-timeout", 5*time.Second, "grace period reported when stopping; listeners close at once and in-flight connections are not waited for")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = logging.WithLogger(ctx, logger)

	sensor := NewSensor(*queueDepth, *workers)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { sensor.Run(ctx); return nil })

	listeners, err := listen.Listen(ctx, "tcp", *bind, listen.Options{})
	if err != nil && len(listeners) == 0 {
		logging.Error(ctx, "listen.error", zap.Error(err))
		os.Exit(1)
	}

	for _, l := range listeners {
		l := l
		logging.Info(ctx, "listening", zap.Stringer("addr", l.Addr()))

		group.Go(func() error {
			for {
				conn, err := l.Accept()
				if err != nil {
					return err
				}
				go sensor.Accept(ctx, conn)
			}
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		logging.Info(ctx, "stopping", zap.Duration("grace", *shutdown))

		var closeErr error
		for _, l := range listeners {
			closeErr = multierr.Append(closeErr, l.Close())
		}
		if closeErr != nil {
			logging.Warn(ctx, "listener.close", zap.Error(closeErr))
		}
		return nil
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		logging.Error(ctx, "sensor.exit", zap.Error(err))
		os.Exit(1)
	}
}
