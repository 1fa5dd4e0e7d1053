// Package ratelimit provides pacing for concurrent downloads.
//
// Batch downloads hammer whichever site they point at, so the worker
// pool takes a Limiter and waits on it before starting each job. The
// token bucket refills wholesale after its period elapses, which keeps
// bursts bounded without tracking per-request timestamps.
package ratelimit
