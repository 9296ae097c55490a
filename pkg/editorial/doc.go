// Package editorial is the content lifecycle and moderation engine of an
// editorial CMS.
//
// It exposes a single Service interface covering posts and their lifecycle
// (draft, scheduled, published, archived), slug generation, tag and SEO
// relation syncing, threaded comment moderation, taxonomy, staff profiles and
// a media library. Repositories (memory, Postgres), blob stores (memory,
// filesystem, S3), event sinks and view counters are pluggable and provided
// under subpackages.
//
// Relation Sync
//
// Tags and SEO settings are written after the post row. Each sync step runs in
// its own repository transaction and is idempotent: re-issuing it with the same
// input performs no writes. When a step fails after the post row was written,
// the operation returns the saved post together with a *SyncError naming the
// step, so the caller can retry just that step.
package editorial
