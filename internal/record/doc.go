// Package record provides SQLite-backed durable storage for the
// provenance records of one local translation dataset.
//
// The store holds two kinds of rows:
//   - Entities: immutable facts (sentences, tokens, POS tags,
//     translation versions, machine translations, dictionary lookups,
//     target-language declarations), keyed per collection.
//   - Activities: typed, time-bounded events that generated, used, or
//     invalidated entities.
//
// Entities are written once and never deleted. Translations are the
// only entity kind with a lifecycle: a new version invalidates the
// prior one, forming a linear revision chain per (target language,
// sentence index). At most one version per chain has
// invalidatedAtTime == 0, the sentinel meaning "current".
//
// # Indexes
//
// The schema carries the secondary indexes the rest of the system
// queries through:
//   - entities by generating activity, for serialization walks
//   - translations by (invalidatedAtTime, targetLanguage,
//     completedAtTime), for completed-translation listing and counts
//   - translations by (targetLanguage, index, generatedAtTime), for
//     latest-version lookups
//   - activities by (targetLanguage, index), for per-sentence history
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - single writer (MaxOpenConns=1), one local user per store
package record
