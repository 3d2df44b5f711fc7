// Package diagnostic provides structured warnings and errors collected
// while building API-surface trees.
//
// Key capabilities:
//   - Ambiguous shape classification reports
//   - Type resolution failures absorbed as "unknown" members
//   - Per-type construction failures reported by a scan
package diagnostic
