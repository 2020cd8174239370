package kerr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/burningass23/kafka-broker/pkg/kmsg"
)

func TestErrorForCodeKnownCodes(t *testing.T) {
	require.Nil(t, ErrorForCode(kmsg.ErrorNone))
	require.Equal(t, UnknownTopicOrPartition, ErrorForCode(kmsg.ErrorUnknownTopicOrPartition))
	require.Equal(t, UnsupportedVersion, ErrorForCode(kmsg.ErrorUnsupportedVersion))
	require.Equal(t, UnknownTopicID, ErrorForCode(kmsg.ErrorUnknownTopicID))
}

func TestErrorForCodeUnknownCodeFallsBackToUnknownServerError(t *testing.T) {
	require.Equal(t, UnknownServerError, ErrorForCode(kmsg.ErrorCode(9999)))
}

func TestIsRetriable(t *testing.T) {
	require.True(t, IsRetriable(UnknownTopicOrPartition))
	require.False(t, IsRetriable(UnsupportedVersion))
	require.False(t, IsRetriable(nil))
}
