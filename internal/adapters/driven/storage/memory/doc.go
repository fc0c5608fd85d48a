// Package memory provides in-memory implementations of the storage ports.
// Nothing survives the process; the memory vector backend and tests use it.
package memory
