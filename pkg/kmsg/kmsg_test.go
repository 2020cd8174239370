package kmsg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/burningass23/kafka-broker/pkg/kbin"
)

func mustDecodeHex(t *testing.T, hexPairs string) []byte {
	t.Helper()
	var out []byte
	var hi byte
	have := false
	for _, c := range hexPairs {
		if c == ' ' {
			continue
		}
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = byte(c - '0')
		case c >= 'a' && c <= 'f':
			v = byte(c-'a') + 10
		default:
			t.Fatalf("bad hex char %q", c)
		}
		if !have {
			hi = v
			have = true
		} else {
			out = append(out, hi<<4|v)
			have = false
		}
	}
	require.False(t, have, "odd number of hex digits")
	return out
}

func TestApiVersionsHappyPathScenario(t *testing.T) {
	reqBytes := mustDecodeHex(t, "00 12 00 04 6f 7f c6 61 00 09 6b 61 66 6b 61 2d 63 6c 69 00")

	r := &kbin.Reader{Src: reqBytes}
	header := ReadRequestHeaderV2(r)
	require.NoError(t, r.Complete())
	require.Equal(t, ApiKeyApiVersions, header.APIKey)
	require.Equal(t, int16(4), header.APIVersion)
	require.Equal(t, int32(0x6f7fc661), header.CorrelationID)
	require.NotNil(t, header.ClientID)
	require.Equal(t, "kafka-cli", *header.ClientID)

	resp := NewApiVersionsResponseV3(header.APIVersion)
	require.Equal(t, ErrorNone, resp.ErrorCode)
	require.Equal(t, SupportedAPIVersions(), resp.APIKeys)

	body := resp.AppendTo(nil)

	expected := []byte{0, 0} // error_code = 0
	expected = kbin.AppendCompactArrayLen(expected, 3)
	for _, k := range []APIVersion{
		{APIKey: ApiKeyApiVersions, MinVersion: 0, MaxVersion: 4},
		{APIKey: ApiKeyDescribeTopicPartitions, MinVersion: 0, MaxVersion: 0},
		{APIKey: ApiKeyFetch, MinVersion: 0, MaxVersion: 16},
	} {
		expected = kbin.AppendInt16(expected, int16(k.APIKey))
		expected = kbin.AppendInt16(expected, k.MinVersion)
		expected = kbin.AppendInt16(expected, k.MaxVersion)
		expected = kbin.AppendTagBuffer(expected)
	}
	expected = kbin.AppendInt32(expected, 0)
	expected = kbin.AppendTagBuffer(expected)

	require.Equal(t, expected, body)
}

func TestApiVersionsUnsupportedVersionScenario(t *testing.T) {
	resp := NewApiVersionsResponseV3(0x2a)
	require.Equal(t, ErrorUnsupportedVersion, resp.ErrorCode)
	require.Equal(t, SupportedAPIVersions(), resp.APIKeys)
}

func TestDescribeTopicPartitionsUnknownTopicScenario(t *testing.T) {
	topic := NewUnknownTopic("foo")
	require.Equal(t, ErrorUnknownTopicOrPartition, topic.ErrorCode)
	require.Equal(t, "foo", topic.Name)
	require.Equal(t, [16]byte{}, topic.TopicID)
	require.Empty(t, topic.Partitions)
	require.Equal(t, int32(0x0DF), topic.TopicAuthorizedOperations)

	resp := NewDescribeTopicPartitionsResponseV0([]DescribeTopicPartitionsTopic{topic})
	require.Equal(t, uint8(0xFF), resp.NextCursor)

	body := resp.AppendTo(nil)
	require.NotEmpty(t, body)
}

func TestDescribeTopicPartitionsKnownTopicTwoPartitionsScenario(t *testing.T) {
	topicID := [16]byte{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	topic := DescribeTopicPartitionsTopic{
		ErrorCode: ErrorNone,
		Name:      "bar",
		TopicID:   topicID,
		Partitions: []DescribeTopicPartitionsPartition{
			{ErrorCode: ErrorNone, PartitionIndex: 0},
			{ErrorCode: ErrorNone, PartitionIndex: 1},
		},
	}

	resp := NewDescribeTopicPartitionsResponseV0([]DescribeTopicPartitionsTopic{topic})
	require.Len(t, resp.Topics, 1)
	require.Equal(t, []DescribeTopicPartitionsPartition{
		{ErrorCode: ErrorNone, PartitionIndex: 0},
		{ErrorCode: ErrorNone, PartitionIndex: 1},
	}, resp.Topics[0].Partitions)

	body := resp.AppendTo(nil)
	require.NotEmpty(t, body)
}

func TestFetchUnknownTopicIDScenario(t *testing.T) {
	topicID := [16]byte{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	resp := FetchResponseV16{
		SessionID: 0,
		Responses: []FetchTopicResponse{
			{
				TopicID: topicID,
				Partitions: []FetchPartitionResponse{
					{PartitionIndex: 0, ErrorCode: ErrorUnknownTopicID, PreferredReadReplica: 0},
				},
			},
		},
	}

	body := resp.AppendTo(nil)
	require.NotEmpty(t, body)
	require.Equal(t, int16(100), int16(ErrorUnknownTopicID))
}

func TestFetchKnownTopicIDSplicesRawSegmentBytes(t *testing.T) {
	topicID := [16]byte{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	segment := make([]byte, 73)
	for i := range segment {
		segment[i] = byte(i)
	}

	resp := FetchResponseV16{
		SessionID: 0,
		Responses: []FetchTopicResponse{
			{
				TopicID: topicID,
				Partitions: []FetchPartitionResponse{
					{PartitionIndex: 0, ErrorCode: ErrorNone, PreferredReadReplica: 0, RecordBatches: segment},
				},
			},
		},
	}

	body := resp.AppendTo(nil)

	// The encoded body must contain the segment bytes verbatim, spliced
	// in as a compact array of one element (UVARINT(2) then the raw
	// bytes), per the documented Fetch deviation.
	idx := indexOf(body, segment)
	require.GreaterOrEqual(t, idx, 0, "segment bytes not found verbatim in encoded response")
}

func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func TestReadRequestHeaderV2RejectsNonZeroTagBuffer(t *testing.T) {
	var raw []byte
	raw = kbin.AppendInt16(raw, int16(ApiKeyFetch))
	raw = kbin.AppendInt16(raw, 16)
	raw = kbin.AppendInt32(raw, 1)
	raw = kbin.AppendNullableString(raw, nil)
	raw = kbin.AppendUvarint(raw, 1) // non-zero tag buffer

	r := &kbin.Reader{Src: raw}
	ReadRequestHeaderV2(r)
	require.Error(t, r.Complete())
}

func TestResponseHeaderV0AndV1Encoding(t *testing.T) {
	v0 := ResponseHeaderV0{CorrelationID: 7}.AppendTo(nil)
	require.Equal(t, []byte{0, 0, 0, 7}, v0)

	v1 := ResponseHeaderV1{CorrelationID: 7}.AppendTo(nil)
	require.Equal(t, []byte{0, 0, 0, 7, 0}, v1)
}

func TestApiKeySupported(t *testing.T) {
	require.True(t, ApiKeyFetch.Supported())
	require.True(t, ApiKeyApiVersions.Supported())
	require.True(t, ApiKeyDescribeTopicPartitions.Supported())
	require.False(t, ApiKey(99).Supported())
}

func TestReadDescribeTopicPartitionsRequestV0RoundTrip(t *testing.T) {
	var raw []byte
	raw = kbin.AppendCompactArrayLen(raw, 2)
	raw = kbin.AppendCompactNullableString(raw, strPtr("foo"))
	raw = kbin.AppendTagBuffer(raw)
	raw = kbin.AppendCompactNullableString(raw, strPtr("bar"))
	raw = kbin.AppendTagBuffer(raw)
	raw = kbin.AppendInt32(raw, 100)
	raw = kbin.AppendUint8(raw, 0)
	raw = kbin.AppendTagBuffer(raw)

	r := &kbin.Reader{Src: raw}
	req := ReadDescribeTopicPartitionsRequestV0(r)
	require.NoError(t, r.Complete())
	require.Equal(t, []string{"foo", "bar"}, req.TopicNames)
	require.Equal(t, int32(100), req.ResponsePartitionLimit)
	require.Equal(t, uint8(0), req.Cursor)
}

func TestReadFetchRequestV16RoundTrip(t *testing.T) {
	topicID := [16]byte{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4}

	var raw []byte
	raw = kbin.AppendUint32(raw, 500) // max_wait_ms
	raw = kbin.AppendUint32(raw, 1)   // min_bytes
	raw = kbin.AppendUint32(raw, 1<<20)
	raw = kbin.AppendUint8(raw, 0) // isolation_level
	raw = kbin.AppendUint32(raw, 0)
	raw = kbin.AppendUint32(raw, 0)

	raw = kbin.AppendCompactArrayLen(raw, 1)
	raw = kbin.AppendUUIDBytes(raw, topicID)
	raw = kbin.AppendCompactArrayLen(raw, 1)
	raw = kbin.AppendUint32(raw, 0) // partition_index
	raw = kbin.AppendUint32(raw, 0)
	raw = kbin.AppendUint64(raw, 0)
	raw = kbin.AppendUint32(raw, 0)
	raw = kbin.AppendUint64(raw, 0)
	raw = kbin.AppendUint32(raw, 1<<20)
	raw = kbin.AppendTagBuffer(raw) // partition tag buffer
	raw = kbin.AppendTagBuffer(raw) // topic tag buffer

	raw = kbin.AppendCompactArrayLen(raw, 0) // forgotten_topics
	raw = kbin.AppendCompactNullableString(raw, nil)
	raw = kbin.AppendTagBuffer(raw)

	r := &kbin.Reader{Src: raw}
	req := ReadFetchRequestV16(r)
	require.NoError(t, r.Complete())
	require.Equal(t, uint32(500), req.MaxWaitMs)
	require.Len(t, req.Topics, 1)
	require.Equal(t, topicID, req.Topics[0].TopicID)
	require.Len(t, req.Topics[0].Partitions, 1)
	require.Equal(t, uint32(0), req.Topics[0].Partitions[0].PartitionIndex)
}

func strPtr(s string) *string { return &s }
