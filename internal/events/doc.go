// Package events defines the progress event stream a paper generation
// batch pushes to its requesting client, and the SSE implementation of
// the event sink. The stream is single-consumer, ordered, and push-only:
// per-unit events ascending by display order, then exactly one complete
// event, then the stream closes.
package events
