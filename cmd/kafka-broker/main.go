// Command kafka-broker runs a Kafka-protocol TCP server implementing
// ApiVersions, DescribeTopicPartitions, and Fetch against a KRaft
// metadata log and its segment files.
package main

import (
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/burningass23/kafka-broker/internal/broker"
	"github.com/burningass23/kafka-broker/internal/log"
)

// No CLI flags or environment variables: per spec.md's Process surface,
// this is a single long-running process listening on the well-known
// broker address against the well-known KRaft data directory, both of
// which broker.New already defaults to. broker.ListenAddr/broker.DataDir
// exist for embedders and tests, not for a flag this binary exposes.
func main() {
	logger := log.New(zerolog.InfoLevel)

	s := broker.New(broker.Logger(logger))

	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("broker exited")
		}
	case <-sigs:
		logger.Info().Msg("shutting down")
		if err := s.Stop(); err != nil {
			logger.Error().Err(err).Msg("stop")
		}
	}
}
