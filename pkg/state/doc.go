// Package state persists atlases between runs so later runs can append
// textures without re-packing earlier ones.
//
// # Snapshot format
//
// A [Snapshot] is encoded as the bytes "APKS" followed by a zstd-compressed
// CBOR document. The document carries a version field; [Decode] refuses
// versions it does not know instead of guessing at their layout.
//
// Each container stores its placement tree flattened in pre-order together
// with the raw NRGBA canvas and an xxhash checksum of those pixels. Restoring
// keeps the split tree, so space used by earlier runs stays reserved.
//
// # Stores
//
// [FileStore] keeps the blob in one file and replaces it atomically on save.
// [RedisStore] keeps it under one Redis key. [Open] picks between them from a
// location string. Stores assume a single writer.
//
// # Skip-list
//
// [SkipList] is the plain-text companion file listing the source identifiers
// already packed, one per line. It is consulted at ingestion time only.
package state
