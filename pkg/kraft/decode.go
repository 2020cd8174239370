package kraft

import (
	"fmt"

	"github.com/burningass23/kafka-broker/pkg/kbin"
)

const (
	recordTypeTopic        = 2
	recordTypePartition    = 3
	recordTypeFeatureLevel = 12
)

func decodeRecordBatch(b *kbin.Reader) RecordBatch {
	rb := RecordBatch{
		BaseOffset:           b.Int64(),
		BatchLength:          b.Int32(),
		PartitionLeaderEpoch: b.Int32(),
		Magic:                b.Int8(),
		CRC:                  b.Uint32(),
		Attributes:           b.Int16(),
		LastOffsetDelta:      b.Int32(),
		BaseTimestamp:        b.Int64(),
		MaxTimestamp:         b.Int64(),
		ProducerID:           b.Int64(),
		ProducerEpoch:        b.Int16(),
		BaseSequence:         b.Int32(),
	}

	n := b.Int32ArrayLen()
	rb.Records = make([]Record, 0, n)
	for i := 0; i < n; i++ {
		rb.Records = append(rb.Records, decodeRecord(b))
	}
	return rb
}

func decodeRecord(b *kbin.Reader) Record {
	length := b.Varint()
	attrs := b.Int8()
	tsDelta := b.Varint()
	offsetDelta := b.Varint()

	keyLen := b.Varint()
	var key []byte
	if keyLen > 0 {
		key = append([]byte(nil), b.Span(int(keyLen))...)
	}

	b.Varint() // value_length: not used to bound the value decode, see spec

	value := decodeRecordValue(b)

	headerCount := b.CompactArrayLen()
	for i := 0; i < headerCount; i++ {
		skipRecordHeader(b)
	}

	return Record{
		Length:         length,
		Attributes:     attrs,
		TimestampDelta: tsDelta,
		OffsetDelta:    offsetDelta,
		Key:            key,
		Value:          value,
	}
}

func skipRecordHeader(b *kbin.Reader) {
	keyLen := b.Varint()
	if keyLen > 0 {
		b.Span(int(keyLen))
	}
	valLen := b.Varint()
	if valLen > 0 {
		b.Span(int(valLen))
	}
}

func decodeRecordValue(b *kbin.Reader) RecordValue {
	frameVersion := b.Uint8()
	recordType := b.Uint8()
	version := b.Uint8()
	if b.Err() != nil {
		return nil
	}
	if frameVersion != 1 {
		b.Fail(fmt.Errorf("kraft: unsupported record frame version %d", frameVersion))
		return nil
	}

	var value RecordValue
	switch {
	case recordType == recordTypeTopic && version == 0:
		value = decodeTopicRecord(b)
	case recordType == recordTypePartition && version == 1:
		value = decodePartitionRecord(b)
	case recordType == recordTypeFeatureLevel && version == 0:
		value = decodeFeatureLevelRecord(b)
	default:
		b.Fail(fmt.Errorf("kraft: unknown record type/version %d/%d", recordType, version))
		return nil
	}

	tagCount := b.Varint()
	if b.Err() == nil && tagCount != 0 {
		b.Fail(fmt.Errorf("kraft: non-empty record value tagged fields"))
		return nil
	}
	return value
}

func decodeTopicRecord(b *kbin.Reader) *TopicRecord {
	name := b.CompactNullableString()
	var id [16]byte
	copy(id[:], b.Span(16))
	return &TopicRecord{Name: name, TopicID: id}
}

func decodePartitionRecord(b *kbin.Reader) *PartitionRecord {
	p := &PartitionRecord{PartitionID: b.Uint32()}
	copy(p.TopicID[:], b.Span(16))

	p.Replicas = decodeUint32CompactArray(b)
	p.InSyncReplicas = decodeUint32CompactArray(b)
	p.RemovingReplicas = decodeUint32CompactArray(b)
	p.AddingReplicas = decodeUint32CompactArray(b)

	p.LeaderID = b.Uint32()
	p.LeaderEpoch = b.Uint32()
	p.PartitionEpoch = b.Uint32()

	nDirs := b.CompactArrayLen()
	p.Directories = make([][16]byte, 0, nDirs)
	for i := 0; i < nDirs; i++ {
		var dir [16]byte
		copy(dir[:], b.Span(16))
		p.Directories = append(p.Directories, dir)
	}
	return p
}

func decodeFeatureLevelRecord(b *kbin.Reader) *FeatureLevelRecord {
	return &FeatureLevelRecord{
		Name:  b.CompactNullableString(),
		Level: b.Uint16(),
	}
}

func decodeUint32CompactArray(b *kbin.Reader) []uint32 {
	n := b.CompactArrayLen()
	out := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.Uint32())
	}
	return out
}
