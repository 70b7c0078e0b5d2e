// Package tokens supplies unit costs for window entries.
//
// The window package treats cost as an opaque non-negative integer;
// this package provides the segmentation collaborators that compute
// it from text. Two counters are available:
//
//   - EstimatingCounter: a fast chars-per-token heuristic, good enough
//     for threshold decisions and tests.
//   - EncodingCounter: exact counts from a tiktoken encoding, matching
//     what an OpenAI-compatible model would bill.
//
// SpendLimiter paces token spend over time for hosts that must respect
// a tokens-per-minute budget.
package tokens
