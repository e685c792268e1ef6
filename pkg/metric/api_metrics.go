package metric

import (
	"strconv"
	"time"
)

// ObserveAPIRequest records count and latency for a served HTTP request.
func ObserveAPIRequest(method, path string, statusCode int, latency time.Duration) {
	tags := BuildTag(
		NewTag(TagMethod, method),
		NewTag(TagPath, path),
		NewTag(TagHttpStatusCode, strconv.Itoa(statusCode)),
	)
	Incr(ApiRequestCount, tags)
	Timing(ApiRequestLatency, latency, tags)
}

// ObserveExternalAPIRequest records count and latency for an outbound call
// to an upstream service.
func ObserveExternalAPIRequest(service, path string, statusCode int, latency time.Duration) {
	tags := BuildTag(
		NewTag(TagCommunicationProtocol, TagValueCommunicationProtocolHttp),
		NewTag(TagExternalService, service),
		NewTag(TagPath, path),
		NewTag(TagHttpStatusCode, strconv.Itoa(statusCode)),
	)
	Incr(ExternalApiRequestCount, tags)
	Timing(ExternalApiRequestLatency, latency, tags)
}
