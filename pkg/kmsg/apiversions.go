package kmsg

import "github.com/burningass23/kafka-broker/pkg/kbin"

// APIVersion is one (api_key, min_version, max_version) triple in an
// ApiVersions response.
type APIVersion struct {
	APIKey     ApiKey
	MinVersion int16
	MaxVersion int16
}

// SupportedAPIVersions is the fixed set of (key, min, max) triples this
// broker advertises. It never changes at runtime, so handlers build a
// fresh response from it on every request rather than caching one.
func SupportedAPIVersions() []APIVersion {
	return []APIVersion{
		{APIKey: ApiKeyApiVersions, MinVersion: 0, MaxVersion: 4},
		{APIKey: ApiKeyDescribeTopicPartitions, MinVersion: 0, MaxVersion: 0},
		{APIKey: ApiKeyFetch, MinVersion: 0, MaxVersion: 16},
	}
}

// ApiVersionsResponseV3 is the body of an ApiVersions response. The
// request body carries no fields this broker reads; only the header's
// api_version feeds into ErrorCode.
type ApiVersionsResponseV3 struct {
	ErrorCode      ErrorCode
	APIKeys        []APIVersion
	ThrottleTimeMs int32
}

// NewApiVersionsResponseV3 builds the response for the given requested
// api_version: UnsupportedVersion if it falls outside [0,4], else None.
// The advertised API key set is identical either way.
func NewApiVersionsResponseV3(requestedVersion int16) ApiVersionsResponseV3 {
	errCode := ErrorNone
	if requestedVersion < 0 || requestedVersion > 4 {
		errCode = ErrorUnsupportedVersion
	}
	return ApiVersionsResponseV3{
		ErrorCode: errCode,
		APIKeys:   SupportedAPIVersions(),
	}
}

// Key implements Response.
func (ApiVersionsResponseV3) Key() ApiKey { return ApiKeyApiVersions }

// HeaderVersion implements Response: ApiVersions uniquely uses header v0,
// since older clients probe ApiVersions before they know whether the
// broker speaks flexible (v1) response headers at all.
func (ApiVersionsResponseV3) HeaderVersion() int8 { return 0 }

// AppendTo implements Response.
func (r ApiVersionsResponseV3) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt16(dst, int16(r.ErrorCode))
	dst = kbin.AppendCompactArrayLen(dst, len(r.APIKeys))
	for _, k := range r.APIKeys {
		dst = kbin.AppendInt16(dst, int16(k.APIKey))
		dst = kbin.AppendInt16(dst, k.MinVersion)
		dst = kbin.AppendInt16(dst, k.MaxVersion)
		dst = kbin.AppendTagBuffer(dst)
	}
	dst = kbin.AppendInt32(dst, r.ThrottleTimeMs)
	dst = kbin.AppendTagBuffer(dst)
	return dst
}
