// Command engine is the CLI entry point for the matching engine (spec.md
// §6): a single positional argument names the endpoint to accept client
// connections from; no other flags are part of the core.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"matchcore/clock"
	"matchcore/ingest"
	"matchcore/sink"
	"matchcore/transport"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <listen-address>\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	addr := flag.Arg(0)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	evSink := sink.NewWriterSink(os.Stdout)
	front := ingest.New(clock.New(), evSink, log)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("failed to listen")
	}
	log.Info().Str("addr", addr).Msg("matching engine listening")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down, closing listener")
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				front.Wait()
				evSink.Flush()
				return
			default:
				log.Warn().Err(err).Msg("accept failed")
				continue
			}
		}
		front.Accept(transport.NewTextSource(conn))
	}
}
