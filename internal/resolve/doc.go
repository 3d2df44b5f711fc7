// Package resolve turns raw member type expressions into canonical type
// names used for textual comparison between scans.
//
// Raw expressions use a small bracketed grammar shared by every front-end:
//
//	union := term { "|" term }
//	term  := name [ "[" args "]" ] | "[" [args] "]" | string | number | "..."
//	args  := union { "," union } [","]
//
// Names are dotted and may carry an import path ("github.com/acme/inv.Item").
// Builtin aliases canonicalize to fixed short tokens, qualified references
// shorten to their bare name unless that name is ambiguous in the scan Index,
// and an absent expression resolves to the unknown marker.
package resolve
