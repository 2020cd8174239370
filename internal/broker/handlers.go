package broker

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/burningass23/kafka-broker/internal/kerr"
	"github.com/burningass23/kafka-broker/pkg/kbin"
	"github.com/burningass23/kafka-broker/pkg/kmsg"
	"github.com/burningass23/kafka-broker/pkg/kraft"
)

// logErrorCode attaches a human-readable description of a wire error
// code to a log event, when the code names an actual error.
func logErrorCode(ev *zerolog.Event, code kmsg.ErrorCode) *zerolog.Event {
	if err := kerr.ErrorForCode(code); err != nil {
		ev = ev.Str("error_description", err.Error())
	}
	return ev
}

// handleApiVersions answers with the broker's fixed (key, min, max)
// triples, erroring only on the requested api_version itself.
func (s *Server) handleApiVersions(header kmsg.RequestHeaderV2, r *kbin.Reader, l zerolog.Logger) (kmsg.Response, error) {
	resp := kmsg.NewApiVersionsResponseV3(header.APIVersion)
	logErrorCode(l.Debug().Int16("error_code", int16(resp.ErrorCode)), resp.ErrorCode).Msg("api versions")
	return resp, nil
}

// handleDescribeTopicPartitions resolves each requested topic name
// against the metadata log's topic catalog, returning an error entry for
// any name with no matching Topic record and the topic's partitions
// (from its PartitionRecords) otherwise. A metadata log read failure is
// fatal to the request: it propagates to the caller, which closes the
// connection.
func (s *Server) handleDescribeTopicPartitions(header kmsg.RequestHeaderV2, r *kbin.Reader, l zerolog.Logger) (kmsg.Response, error) {
	req := kmsg.ReadDescribeTopicPartitionsRequestV0(r)

	catalog, err := s.loadCatalog()
	if err != nil {
		return nil, fmt.Errorf("describe topic partitions: load metadata catalog: %w", err)
	}

	topics := make([]kmsg.DescribeTopicPartitionsTopic, 0, len(req.TopicNames))
	for _, name := range req.TopicNames {
		topicID, ok := catalog.TopicID(name)
		if !ok {
			logErrorCode(l.Debug().Str("topic", name), kmsg.ErrorUnknownTopicOrPartition).Msg("unknown topic")
			topics = append(topics, kmsg.NewUnknownTopic(name))
			continue
		}
		topics = append(topics, describeKnownTopic(catalog, name, topicID))
	}

	l.Debug().Int("topics", len(topics)).Msg("describe topic partitions")
	return kmsg.NewDescribeTopicPartitionsResponseV0(topics), nil
}

func describeKnownTopic(catalog kraft.Catalog, name string, topicID [16]byte) kmsg.DescribeTopicPartitionsTopic {
	records := catalog.PartitionsForTopic(topicID)
	partitions := make([]kmsg.DescribeTopicPartitionsPartition, 0, len(records))
	for _, p := range records {
		partitions = append(partitions, kmsg.DescribeTopicPartitionsPartition{
			ErrorCode:       kmsg.ErrorNone,
			PartitionIndex:  p.PartitionID,
			LeaderID:        p.LeaderID,
			LeaderEpoch:     p.LeaderEpoch,
			Replicas:        p.Replicas,
			InSyncReplicas:  p.InSyncReplicas,
			OfflineReplicas: p.RemovingReplicas,
		})
	}

	return kmsg.DescribeTopicPartitionsTopic{
		ErrorCode:                 kmsg.ErrorNone,
		Name:                      name,
		TopicID:                   topicID,
		Partitions:                partitions,
		TopicAuthorizedOperations: topicAuthorizedOperationsDefault,
	}
}

// topicAuthorizedOperationsDefault is the value this broker reports for
// a known topic. See DESIGN.md for the relationship between this and
// kmsg's unknown-topic placeholder.
const topicAuthorizedOperationsDefault int32 = 0x0DF

// handleFetch resolves each requested (topic_id, partition) against the
// metadata log and splices the partition's on-disk segment bytes
// verbatim into the response, or ErrorUnknownTopicID if the topic_id has
// no matching Topic record or the partition's segment file is missing or
// unreadable. A metadata log read failure is fatal to the request: it
// propagates to the caller, which closes the connection. A segment read
// failure does not propagate; it is reported only as ErrorUnknownTopicID
// on that partition.
func (s *Server) handleFetch(header kmsg.RequestHeaderV2, r *kbin.Reader, l zerolog.Logger) (kmsg.Response, error) {
	req := kmsg.ReadFetchRequestV16(r)

	catalog, err := s.loadCatalog()
	if err != nil {
		return nil, fmt.Errorf("fetch: load metadata catalog: %w", err)
	}

	responses := make([]kmsg.FetchTopicResponse, 0, len(req.Topics))
	for _, topic := range req.Topics {
		responses = append(responses, s.fetchTopic(catalog, topic))
	}

	l.Debug().Int("topics", len(responses)).Msg("fetch")
	return kmsg.FetchResponseV16{SessionID: int32(req.SessionID), Responses: responses}, nil
}

func (s *Server) fetchTopic(catalog kraft.Catalog, topic kmsg.FetchTopicRequest) kmsg.FetchTopicResponse {
	_, known := catalog.TopicName(topic.TopicID)

	partitions := make([]kmsg.FetchPartitionResponse, 0, len(topic.Partitions))
	for _, p := range topic.Partitions {
		if !known {
			partitions = append(partitions, kmsg.FetchPartitionResponse{
				PartitionIndex:       p.PartitionIndex,
				ErrorCode:            kmsg.ErrorUnknownTopicID,
				PreferredReadReplica: 0,
			})
			continue
		}
		partitions = append(partitions, s.fetchPartition(catalog, topic.TopicID, p))
	}
	return kmsg.FetchTopicResponse{TopicID: topic.TopicID, Partitions: partitions}
}

func (s *Server) fetchPartition(catalog kraft.Catalog, topicID [16]byte, p kmsg.FetchPartition) kmsg.FetchPartitionResponse {
	segment, err := catalog.RawSegment(s.dataDir, topicID, p.PartitionIndex)
	if err != nil || segment == nil {
		return kmsg.FetchPartitionResponse{
			PartitionIndex:       p.PartitionIndex,
			ErrorCode:            kmsg.ErrorUnknownTopicID,
			PreferredReadReplica: 0,
		}
	}
	return kmsg.FetchPartitionResponse{
		PartitionIndex:       p.PartitionIndex,
		ErrorCode:            kmsg.ErrorNone,
		PreferredReadReplica: 0,
		RecordBatches:        segment,
	}
}

// loadCatalog re-reads and re-parses the metadata log on every call, with
// no caching, so each request sees the file as it is at that moment. See
// DESIGN.md.
func (s *Server) loadCatalog() (kraft.Catalog, error) {
	metaLog, err := kraft.LoadMetadata(s.dataDir)
	if err != nil {
		return kraft.Catalog{}, err
	}
	return metaLog.BuildCatalog(), nil
}
