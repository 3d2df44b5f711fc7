// Package match provides fuzzy identifier matching for "did you mean"
// suggestions across naming conventions.
//
// Key functions:
//   - NormalizeIdent: folds snake_case, CamelCase and kebab-case to one form
//   - Levenshtein: computes edit distance between strings
//   - Closest: ranks known names by similarity to a query
package match
