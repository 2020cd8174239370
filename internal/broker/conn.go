package broker

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/burningass23/kafka-broker/internal/log"
	"github.com/burningass23/kafka-broker/pkg/kbin"
	"github.com/burningass23/kafka-broker/pkg/kmsg"
)

// serveConn handles one client connection for its entire lifetime:
// request after request, until the client disconnects, a frame fails to
// parse, or the request names an unsupported api_key.
func (s *Server) serveConn(conn net.Conn) {
	connLogger := log.WithConn(s.logger, conn.RemoteAddr().String())
	connLogger.Info().Msg("connection opened")
	defer func() {
		conn.Close()
		connLogger.Info().Msg("connection closed")
	}()

	for {
		frame, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				connLogger.Error().Err(err).Msg("read frame")
			}
			return
		}

		if err := s.handleFrame(conn, connLogger, frame); err != nil {
			connLogger.Error().Err(err).Msg("handle frame")
			return
		}
	}
}

// readFrame reads one length-prefixed Kafka request frame: a big-endian
// int32 byte count followed by that many bytes (header plus body).
func readFrame(conn net.Conn) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])

	buf := make([]byte, n)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// handleFrame decodes the request header, dispatches to the matching
// handler, and writes the length-prefixed response. An unsupported
// api_key closes the connection rather than returning an error response,
// since this broker advertises its supported keys via ApiVersions and a
// well-behaved client never sends one it has not negotiated.
func (s *Server) handleFrame(conn net.Conn, connLogger zerolog.Logger, frame []byte) error {
	r := &kbin.Reader{Src: frame}
	header := kmsg.ReadRequestHeaderV2(r)
	if err := r.Err(); err != nil {
		return err
	}

	reqLogger := log.WithRequest(connLogger, int16(header.APIKey), header.APIVersion, header.CorrelationID)

	if !header.APIKey.Supported() {
		reqLogger.Warn().Msg("unsupported api key, closing connection")
		return errUnsupportedAPIKey
	}

	resp, err := s.dispatch(header, r, reqLogger)
	if err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		return err
	}

	return writeResponse(conn, header.CorrelationID, resp)
}

func (s *Server) dispatch(header kmsg.RequestHeaderV2, r *kbin.Reader, l zerolog.Logger) (kmsg.Response, error) {
	switch header.APIKey {
	case kmsg.ApiKeyApiVersions:
		return s.handleApiVersions(header, r, l)
	case kmsg.ApiKeyDescribeTopicPartitions:
		return s.handleDescribeTopicPartitions(header, r, l)
	case kmsg.ApiKeyFetch:
		return s.handleFetch(header, r, l)
	default:
		return nil, errUnsupportedAPIKey
	}
}

func writeResponse(conn net.Conn, correlationID int32, resp kmsg.Response) error {
	var header []byte
	switch resp.HeaderVersion() {
	case 0:
		header = kmsg.ResponseHeaderV0{CorrelationID: correlationID}.AppendTo(header)
	default:
		header = kmsg.ResponseHeaderV1{CorrelationID: correlationID}.AppendTo(header)
	}

	body := resp.AppendTo(header)

	var out []byte
	out = kbin.AppendInt32(out, int32(len(body)))
	out = append(out, body...)

	_, err := conn.Write(out)
	return err
}
