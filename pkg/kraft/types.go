// Package kraft parses Kafka's KRaft metadata log and per-partition
// segment files: the concatenated RecordBatch frames that carry topic,
// partition, and feature-level events, and the raw segment bytes Fetch
// serves back to clients verbatim.
package kraft

// RecordBatch is one frame of Kafka's on-disk/on-wire record batch
// format. CRC, Magic, and BatchLength are parsed but never cross-checked
// against the byte span they describe, per this broker's scope: the
// metadata log and segment files are assumed well-formed.
type RecordBatch struct {
	// BaseOffset is exported, like the other framing fields, so a
	// future offset-aware fetch cursor can use it directly without
	// touching the decoder.
	BaseOffset           int64
	BatchLength          int32
	PartitionLeaderEpoch int32
	Magic                int8
	CRC                  uint32
	Attributes           int16
	LastOffsetDelta      int32
	BaseTimestamp        int64
	MaxTimestamp         int64
	ProducerID           int64
	ProducerEpoch        int16
	BaseSequence         int32
	Records              []Record
}

// Compression reports the compression codec named in this batch's
// attributes (bits 0-2), independent of whether this broker ever
// decompresses it on the request path. See BatchCompression.
func (b RecordBatch) Compression() BatchCompression {
	return BatchCompression(b.Attributes & 0x7)
}

// Record is one inner record of a RecordBatch. Length is decoded but,
// per spec, never used to cross-check the bytes actually consumed.
type Record struct {
	Length         int64
	Attributes     int8
	TimestampDelta int64
	OffsetDelta    int64
	Key            []byte
	Value          RecordValue
}

// RecordValue is the typed union carried in a Record's value: exactly
// one of TopicRecord, PartitionRecord, or FeatureLevelRecord. This is a
// small closed Go interface rather than an open one, since KRaft's
// metadata log has exactly these three record types in scope here.
type RecordValue interface {
	isRecordValue()
}

// TopicRecord names a topic and assigns it a UUID (record_type=2,
// version=0).
type TopicRecord struct {
	Name    *string
	TopicID [16]byte
}

func (*TopicRecord) isRecordValue() {}

// PartitionRecord describes one partition of a topic (record_type=3,
// version=1).
type PartitionRecord struct {
	PartitionID      uint32
	TopicID          [16]byte
	Replicas         []uint32
	InSyncReplicas   []uint32
	RemovingReplicas []uint32
	AddingReplicas   []uint32
	LeaderID         uint32
	LeaderEpoch      uint32
	PartitionEpoch   uint32
	Directories      [][16]byte
}

func (*PartitionRecord) isRecordValue() {}

// FeatureLevelRecord announces a cluster feature's active version
// (record_type=12, version=0). This broker parses it (it appears in
// every real KRaft metadata log) but no handler consults it, since no
// in-scope response surfaces feature levels.
type FeatureLevelRecord struct {
	Name  *string
	Level uint16
}

func (*FeatureLevelRecord) isRecordValue() {}
