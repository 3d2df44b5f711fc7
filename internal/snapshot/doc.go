// Package snapshot persists scan results in a SQLite database so later
// scans can be compared against them.
//
// Each scan gets a time-ordered UUID. Every class is stored as its YAML
// view plus one row per child node, which keeps member lookups in SQL.
package snapshot
