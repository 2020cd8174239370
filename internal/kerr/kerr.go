// Package kerr contains the Kafka errors this broker can return.
//
// The errors are undocumented to avoid duplicating the official
// descriptions at http://kafka.apache.org/protocol.html#protocolErrorCodes.
// Since this package is dedicated to errors and is named "kerr", all
// errors elide the standard "Err" prefix.
package kerr

import "github.com/burningass23/kafka-broker/pkg/kmsg"

// Error is a Kafka protocol error.
type Error struct {
	// Message is the string form of a Kafka error code
	// (UNKNOWN_SERVER_ERROR, etc).
	Message string
	// Code is the wire error code.
	Code kmsg.ErrorCode
	// Retriable is whether Kafka considers the error retriable.
	Retriable bool
	// Description is a succinct description of what this error means.
	Description string
}

func (e *Error) Error() string { return e.Message }

var (
	UnknownServerError = &Error{"UNKNOWN_SERVER_ERROR", -1, false,
		"The server experienced an unexpected error when processing the request."}
	UnknownTopicOrPartition = &Error{"UNKNOWN_TOPIC_OR_PARTITION", kmsg.ErrorUnknownTopicOrPartition, true,
		"This server does not host this topic-partition."}
	UnsupportedVersion = &Error{"UNSUPPORTED_VERSION", kmsg.ErrorUnsupportedVersion, false,
		"The version of API is not supported."}
	UnknownTopicID = &Error{"UNKNOWN_TOPIC_ID", kmsg.ErrorUnknownTopicID, true,
		"This server does not host this topic ID."}
)

var code2err = map[kmsg.ErrorCode]*Error{
	kmsg.ErrorUnknownTopicOrPartition: UnknownTopicOrPartition,
	kmsg.ErrorUnsupportedVersion:      UnsupportedVersion,
	kmsg.ErrorUnknownTopicID:          UnknownTopicID,
}

// ErrorForCode returns the error corresponding to the given wire error
// code. If the code is unknown, this returns UnknownServerError. If the
// code is kmsg.ErrorNone, this returns nil.
func ErrorForCode(code kmsg.ErrorCode) error {
	if code == kmsg.ErrorNone {
		return nil
	}
	err, exists := code2err[code]
	if !exists {
		return UnknownServerError
	}
	return err
}

// IsRetriable returns whether a Kafka error is considered retriable.
func IsRetriable(err error) bool {
	ke, ok := err.(*Error)
	return ok && ke.Retriable
}
