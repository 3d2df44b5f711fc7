// Package scan drives node-tree construction over many type definitions.
//
// A scan first collects every target and builds one read-only resolver
// index from their qualified names, so a short name shared by two targets
// stays qualified in every tree. Trees are then built on a bounded worker
// pool; results keep the input order.
package scan
