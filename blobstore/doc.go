// Package blobstore implements the file I/O collaborator the cores use for
// test fixtures and demo persistence (spec.md §6): a file manager exposing
// opaque save/load plus JSON text variants, optionally chaining an
// encryption strategy over the bytes it writes and reads.
package blobstore
