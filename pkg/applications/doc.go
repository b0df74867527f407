// Package applications provides read access to application records.
//
// Application records are owned by the admin layer; this package only reads
// them. The session guard consults FindApplicationByID on its fallback path,
// so lookups go through an expirable LRU cache to keep the miss path cheap.
package applications
