package kraft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/burningass23/kafka-broker/pkg/kbin"
)

// DefaultDataDir is the well-known filesystem root KRaft-mode Kafka
// brokers use for the metadata log and per-partition segments. It is the
// default for broker.DataDir, not a hard-coded path baked into this
// package: every function here takes the directory explicitly.
const DefaultDataDir = "/tmp/kraft-combined-logs"

// MetadataLogPath returns the path of the __cluster_metadata-0 log file
// under the given data directory.
func MetadataLogPath(dataDir string) string {
	return filepath.Join(dataDir, "__cluster_metadata-0", "00000000000000000000.log")
}

// segmentLogPath returns the path of a topic-partition's single segment
// file under the given data directory.
func segmentLogPath(dataDir, topicName string, partitionID uint32) string {
	return filepath.Join(dataDir, fmt.Sprintf("%s-%d", topicName, partitionID), "00000000000000000000.log")
}

// Log is a parsed metadata log: the full sequence of RecordBatch frames
// read from one file.
type Log struct {
	Batches []RecordBatch
}

// Load reads the entire file at path and parses it as a concatenated
// sequence of RecordBatch frames until the buffer is exhausted.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := &kbin.Reader{Src: data}
	var batches []RecordBatch
	for len(r.Src) > 0 {
		rb := decodeRecordBatch(r)
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("kraft: decode record batch: %w", err)
		}
		batches = append(batches, rb)
	}
	return &Log{Batches: batches}, nil
}

// LoadMetadata is a convenience wrapper around Load(MetadataLogPath(dataDir)).
func LoadMetadata(dataDir string) (*Log, error) {
	return Load(MetadataLogPath(dataDir))
}

// Catalog is the topic/partition view derived from a Log: the union of
// every TopicRecord and PartitionRecord seen across all of its batches.
// It is rebuilt from scratch on every request; see DESIGN.md for the
// decision not to cache it.
type Catalog struct {
	idByName          map[string][16]byte
	nameByID          map[[16]byte]string
	partitionsByTopic map[[16]byte][]PartitionRecord
}

// BuildCatalog derives a Catalog from a parsed Log. If a topic_id
// recurs across multiple TopicRecords (assumed not to happen, but not
// validated), the last occurrence wins, per spec.
func (l *Log) BuildCatalog() Catalog {
	c := Catalog{
		idByName:          make(map[string][16]byte),
		nameByID:          make(map[[16]byte]string),
		partitionsByTopic: make(map[[16]byte][]PartitionRecord),
	}
	for _, batch := range l.Batches {
		for _, rec := range batch.Records {
			switch v := rec.Value.(type) {
			case *TopicRecord:
				name := ""
				if v.Name != nil {
					name = *v.Name
				}
				c.idByName[name] = v.TopicID
				c.nameByID[v.TopicID] = name
			case *PartitionRecord:
				c.partitionsByTopic[v.TopicID] = append(c.partitionsByTopic[v.TopicID], *v)
			}
		}
	}
	return c
}

// TopicID looks up a topic's ID by name.
func (c Catalog) TopicID(name string) ([16]byte, bool) {
	id, ok := c.idByName[name]
	return id, ok
}

// TopicName looks up a topic's name by ID.
func (c Catalog) TopicName(id [16]byte) (string, bool) {
	name, ok := c.nameByID[id]
	return name, ok
}

// PartitionsForTopic returns every partition record seen for the given
// topic ID, in the order their batches were parsed.
func (c Catalog) PartitionsForTopic(id [16]byte) []PartitionRecord {
	return c.partitionsByTopic[id]
}

// ErrNoSuchTopic is returned by nothing in this package directly; it
// documents the "no data for that partition" case RawSegment reports via
// a nil, nil return instead of an error, matching spec's treatment of a
// missing segment file as equivalent to an unknown topic_id.
var ErrNoSuchTopic = errors.New("kraft: topic id not present in metadata log")

// RawSegment resolves topic_id to a topic name via the catalog, then
// reads that topic-partition's segment file in full. It returns (nil,
// nil) if the topic_id is unknown or the segment file does not exist; it
// returns a non-nil error only if the file exists but could not be read.
func (c Catalog) RawSegment(dataDir string, topicID [16]byte, partitionID uint32) ([]byte, error) {
	name, ok := c.TopicName(topicID)
	if !ok {
		return nil, nil
	}

	data, err := os.ReadFile(segmentLogPath(dataDir, name, partitionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
