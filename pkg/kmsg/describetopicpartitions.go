package kmsg

import "github.com/burningass23/kafka-broker/pkg/kbin"

// topicAuthorizedOperationsPlaceholder is carried byte-for-byte from the
// source this broker's behavior is grounded on. It looks like a truncated
// form of Kafka's usual 0x0000_0DF8 default operation bitmask; see
// DESIGN.md for the decision to keep it rather than "fix" it.
const topicAuthorizedOperationsPlaceholder int32 = 0x0DF

// DescribeTopicPartitionsRequestV0 is the decoded request body.
type DescribeTopicPartitionsRequestV0 struct {
	TopicNames             []string
	ResponsePartitionLimit int32
	Cursor                 uint8
}

// ReadDescribeTopicPartitionsRequestV0 decodes the request body: a
// compact array of topic names (each itself a compact nullable string
// plus a tag buffer), the response partition limit, the cursor byte, and
// a trailing tag buffer.
func ReadDescribeTopicPartitionsRequestV0(b *kbin.Reader) DescribeTopicPartitionsRequestV0 {
	n := b.CompactArrayLen()
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := b.CompactNullableString()
		b.TagBuffer()
		if name != nil {
			names = append(names, *name)
		} else {
			names = append(names, "")
		}
	}
	limit := b.Int32()
	cursor := b.Uint8()
	b.TagBuffer()
	return DescribeTopicPartitionsRequestV0{
		TopicNames:             names,
		ResponsePartitionLimit: limit,
		Cursor:                 cursor,
	}
}

// DescribeTopicPartitionsPartition is one partition entry in a topic's
// response.
type DescribeTopicPartitionsPartition struct {
	ErrorCode       ErrorCode
	PartitionIndex  uint32
	LeaderID        uint32
	LeaderEpoch     uint32
	Replicas        []uint32
	InSyncReplicas  []uint32
	OfflineReplicas []uint32
}

// DescribeTopicPartitionsTopic is one topic entry in the response.
type DescribeTopicPartitionsTopic struct {
	ErrorCode                 ErrorCode
	Name                      string
	TopicID                   [16]byte
	IsInternal                bool
	Partitions                []DescribeTopicPartitionsPartition
	TopicAuthorizedOperations int32
}

// NewUnknownTopic builds the response entry for a requested topic name
// with no matching Topic record in the metadata log.
func NewUnknownTopic(name string) DescribeTopicPartitionsTopic {
	return DescribeTopicPartitionsTopic{
		ErrorCode:                 ErrorUnknownTopicOrPartition,
		Name:                      name,
		TopicAuthorizedOperations: topicAuthorizedOperationsPlaceholder,
	}
}

// DescribeTopicPartitionsResponseV0 is the body of a
// DescribeTopicPartitions response.
type DescribeTopicPartitionsResponseV0 struct {
	Topics     []DescribeTopicPartitionsTopic
	NextCursor uint8
}

// NewDescribeTopicPartitionsResponseV0 builds a response with the
// fixed next_cursor value this broker always returns (pagination across
// multiple DescribeTopicPartitions calls is out of scope).
func NewDescribeTopicPartitionsResponseV0(topics []DescribeTopicPartitionsTopic) DescribeTopicPartitionsResponseV0 {
	return DescribeTopicPartitionsResponseV0{Topics: topics, NextCursor: 0xFF}
}

// Key implements Response.
func (DescribeTopicPartitionsResponseV0) Key() ApiKey { return ApiKeyDescribeTopicPartitions }

// HeaderVersion implements Response.
func (DescribeTopicPartitionsResponseV0) HeaderVersion() int8 { return 1 }

// AppendTo implements Response.
func (r DescribeTopicPartitionsResponseV0) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt32(dst, 0) // throttle_time_ms
	dst = kbin.AppendCompactArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendInt16(dst, int16(t.ErrorCode))
		name := t.Name
		dst = kbin.AppendCompactNullableString(dst, &name)
		dst = kbin.AppendUUIDBytes(dst, t.TopicID)
		dst = kbin.AppendUint8(dst, boolToUint8(t.IsInternal))
		dst = kbin.AppendCompactArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt16(dst, int16(p.ErrorCode))
			dst = kbin.AppendUint32(dst, p.PartitionIndex)
			dst = kbin.AppendUint32(dst, p.LeaderID)
			dst = kbin.AppendUint32(dst, p.LeaderEpoch)
			dst = appendUint32CompactArray(dst, p.Replicas)
			dst = appendUint32CompactArray(dst, p.InSyncReplicas)
			dst = kbin.AppendCompactArrayLen(dst, 0) // eligible_leader_replicas
			dst = kbin.AppendCompactArrayLen(dst, 0) // last_known_eligible_leader_replicas
			dst = appendUint32CompactArray(dst, p.OfflineReplicas)
			dst = kbin.AppendTagBuffer(dst)
		}
		dst = kbin.AppendInt32(dst, t.TopicAuthorizedOperations)
		dst = kbin.AppendTagBuffer(dst)
	}
	dst = kbin.AppendUint8(dst, r.NextCursor)
	dst = kbin.AppendTagBuffer(dst)
	return dst
}

func appendUint32CompactArray(dst []byte, vals []uint32) []byte {
	dst = kbin.AppendCompactArrayLen(dst, len(vals))
	for _, v := range vals {
		dst = kbin.AppendUint32(dst, v)
	}
	return dst
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
