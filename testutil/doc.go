// Package testutil provides deterministic helpers for tests:
// a seeded thread-safe random number generator and key-set builders.
package testutil
