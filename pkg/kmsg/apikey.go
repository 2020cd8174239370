package kmsg

// ApiKey identifies the kind of a Kafka request or response. Only the
// three keys this broker understands are named; any other value is
// rejected by the dispatch loop before it reaches a handler.
type ApiKey int16

const (
	ApiKeyFetch                   ApiKey = 1
	ApiKeyApiVersions             ApiKey = 18
	ApiKeyDescribeTopicPartitions ApiKey = 75
)

// Supported reports whether this broker has a handler for the key.
func (k ApiKey) Supported() bool {
	switch k {
	case ApiKeyFetch, ApiKeyApiVersions, ApiKeyDescribeTopicPartitions:
		return true
	}
	return false
}

// ErrorCode is a Kafka protocol error code as carried on the wire. Only
// the codes this broker ever emits are named here; internal/kerr attaches
// human-readable messages to them.
type ErrorCode int16

const (
	ErrorNone                    ErrorCode = 0
	ErrorUnknownTopicOrPartition ErrorCode = 3
	ErrorUnsupportedVersion      ErrorCode = 35
	ErrorUnknownTopicID          ErrorCode = 100
)
