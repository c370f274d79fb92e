// Package exporter persists pipeline output to durable storage.
//
// The converted table is written as gdps_<currency>.csv, .json or .xlsx
// under the reports directory; the raw uncoerced table can be snapshotted
// as JSON under the cache directory. Every file's content is materialized
// in memory before the first byte hits disk, so a failed run never leaves
// a partial output file behind.
package exporter
