// Package shape classifies type definitions into the closed set of
// structural shapes the member enumerator knows how to walk.
//
// Classification looks only at the markers a definition carries, never at
// its name or documentation.
package shape
