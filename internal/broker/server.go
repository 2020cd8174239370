// Package broker implements the TCP server loop: accepting connections,
// framing requests and responses, and dispatching each request to the
// handler for its api_key.
package broker

import (
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/burningass23/kafka-broker/internal/log"
	"github.com/burningass23/kafka-broker/pkg/kraft"
)

// Opt configures a Server. See ListenAddr, DataDir, and Logger.
type Opt interface {
	apply(*Server)
}

type optFunc func(*Server)

func (f optFunc) apply(s *Server) { f(s) }

// ListenAddr sets the TCP address the server binds to. Defaults to
// "127.0.0.1:9092".
func ListenAddr(addr string) Opt {
	return optFunc(func(s *Server) { s.listenAddr = addr })
}

// DataDir sets the root directory holding the KRaft metadata log and
// per-partition segment files. Defaults to kraft.DefaultDataDir.
func DataDir(dir string) Opt {
	return optFunc(func(s *Server) { s.dataDir = dir })
}

// Logger sets the base zerolog.Logger every connection and request
// logger is derived from. Defaults to a logger at info level.
func Logger(l zerolog.Logger) Opt {
	return optFunc(func(s *Server) { s.logger = l })
}

// Server is a Kafka-protocol TCP server implementing ApiVersions,
// DescribeTopicPartitions, and Fetch against a KRaft metadata log and
// its segment files.
type Server struct {
	listenAddr string
	dataDir    string
	logger     zerolog.Logger

	listener net.Listener
	wg       sync.WaitGroup
	shutdown chan struct{}
}

// New builds a Server with the given options applied over the defaults.
func New(opts ...Opt) *Server {
	s := &Server{
		listenAddr: "127.0.0.1:9092",
		dataDir:    kraft.DefaultDataDir,
		logger:     log.New(zerolog.InfoLevel),
		shutdown:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// ListenAndServe binds the listen address and blocks, accepting and
// serving connections until Stop is called or Accept returns an error
// other than one caused by the listener being closed.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("broker: listen on %s: %w", s.listenAddr, err)
	}
	s.listener = ln
	s.logger.Info().Str("addr", s.listenAddr).Str("data_dir", s.dataDir).Msg("broker listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
				return fmt.Errorf("broker: accept: %w", err)
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// Stop closes the listener and waits for in-flight connections to drain.
func (s *Server) Stop() error {
	close(s.shutdown)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	s.logger.Info().Msg("broker stopped")
	return err
}
