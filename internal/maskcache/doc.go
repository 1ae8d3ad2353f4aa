// Package maskcache stores decoded mask pixel arrays keyed by mask content.
//
// Decoding a large run-length encoded mask is the most expensive step of a
// render that does not touch pixels. Viewers re-render the same document many
// times as tags are toggled, so the decoded arrays are worth keeping.
//
// Three implementations are provided:
//
//   - [Memory]: an in-process cache bounded by entry count, evicting oldest first
//   - [Redis]: a shared cache for several server processes, with a TTL
//   - [Null]: never stores anything
//
// Keys come from annotation.Mask.ContentKey. Values are treated as immutable
// once stored; callers must not modify a slice returned by Get.
package maskcache
