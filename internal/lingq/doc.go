// Package lingq is a small client for the LingQ v3 REST API covering the calls
// the book and podcast uploads make: collection and lesson creation, audio and
// cover attachment, bulk lesson updates and timestamp generation.
//
// The API token is passed explicitly through Options; the client never reads
// credentials from the environment. Every call returns either a typed result
// or a *Failed error that matches ErrRemoteCallFailed, so callers never
// inspect raw response bodies. Requests are paced by a token bucket limiter.
package lingq
