// Package writers turns merged catalogue entries into serialized outputs.
//
// Writers own all presentation knowledge (text table, JSON, JSONL); the
// resolver and assembler stay domain-only. JSON and JSONL go through
// pkg/api (v1) for a stable wire format.
package writers
