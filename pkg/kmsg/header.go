// Package kmsg contains the Kafka request and response types this broker
// understands, and the (de)serialization logic for them, built on top of
// pkg/kbin's primitive codec.
//
// Only the three in-scope API keys have request/response types here:
// ApiVersions (18), DescribeTopicPartitions (75), and Fetch (1).
package kmsg

import "github.com/burningass23/kafka-broker/pkg/kbin"

// RequestHeaderV2 is the only request header version this broker accepts.
type RequestHeaderV2 struct {
	APIKey        ApiKey
	APIVersion    int16
	CorrelationID int32
	ClientID      *string
}

// ReadRequestHeaderV2 decodes a v2 request header: api_key, api_version,
// correlation_id, a nullable client_id, and a trailing tag buffer.
func ReadRequestHeaderV2(b *kbin.Reader) RequestHeaderV2 {
	h := RequestHeaderV2{
		APIKey:        ApiKey(b.Int16()),
		APIVersion:    b.Int16(),
		CorrelationID: b.Int32(),
		ClientID:      b.NullableString(),
	}
	b.TagBuffer()
	return h
}

// ResponseHeaderV0 is a bare correlation ID, used only by ApiVersions.
type ResponseHeaderV0 struct {
	CorrelationID int32
}

// AppendTo appends the serialized header.
func (h ResponseHeaderV0) AppendTo(dst []byte) []byte {
	return kbin.AppendInt32(dst, h.CorrelationID)
}

// ResponseHeaderV1 is a correlation ID followed by an empty tag buffer,
// used by every in-scope response other than ApiVersions.
type ResponseHeaderV1 struct {
	CorrelationID int32
}

// AppendTo appends the serialized header.
func (h ResponseHeaderV1) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt32(dst, h.CorrelationID)
	return kbin.AppendTagBuffer(dst)
}
