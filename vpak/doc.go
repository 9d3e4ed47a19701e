// Package vpak implements the engine's content-addressed archive
// format: a header, a perfect-hash-indexed entry table, and a stream
// of Zstd-compressed, link-chained blocks per entry.
package vpak
