package scan

import (
	"apistub/internal/diagnostic"
	"apistub/internal/shape"
	"apistub/node"
)

// Summary aggregates scan results.
type Summary struct {
	Total   int
	Failed  int
	ByShape map[shape.Shape]int
	// Diagnostics collects the problems absorbed by every built tree.
	Diagnostics diagnostic.Diagnostics
}

// Summarize aggregates results.
func Summarize(results []Result) Summary {
	sum := Summary{ByShape: make(map[shape.Shape]int)}

	for _, r := range results {
		sum.Total++

		if r.Err != nil {
			sum.Failed++
			sum.Diagnostics.AddError(diagnostic.CodeConstructionFailed, r.Err.Error(), r.Target.ID(), "")

			continue
		}

		sum.ByShape[r.Node.Shape()]++
		sum.Diagnostics.Merge(r.Node.Diagnostics())
	}

	return sum
}

// Nodes returns the successfully built trees, in result order.
func Nodes(results []Result) []*node.ClassNode {
	nodes := make([]*node.ClassNode, 0, len(results))
	for _, r := range results {
		if r.Node != nil {
			nodes = append(nodes, r.Node)
		}
	}

	return nodes
}
