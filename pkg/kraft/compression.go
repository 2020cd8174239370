package kraft

import "fmt"

// BatchCompression identifies the codec named in a RecordBatch's
// attributes bits 0-2 (the same values Kafka has used since the
// attributes byte was introduced).
type BatchCompression int8

const (
	CompressionNone   BatchCompression = 0
	CompressionGzip   BatchCompression = 1
	CompressionSnappy BatchCompression = 2
	CompressionLZ4    BatchCompression = 3
	CompressionZstd   BatchCompression = 4
)

func (c BatchCompression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", int8(c))
	}
}
