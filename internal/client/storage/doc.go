// Package storage is the client's durable key/value store.
//
// Everything the client keeps across restarts lives in one SQLite table
// (see package migrations) under a fixed set of keys: the bearer credential,
// the persisted session slice, and the offline cache of transactions and
// receipts. Values are opaque bytes; callers own the encoding.
package storage
