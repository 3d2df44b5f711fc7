package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"apistub/node"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatYAML, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatYAML, formatJSON)
	}
}

// writeViews encodes the views in the requested format.
func writeViews(w io.Writer, format string, views []node.ClassView) error {
	if views == nil {
		views = []node.ClassView{}
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(views)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(views); err != nil {
			return err
		}

		return enc.Close()
	}
}

func viewsOf(nodes []*node.ClassNode, withShape bool) []node.ClassView {
	views := make([]node.ClassView, 0, len(nodes))
	for _, n := range nodes {
		if withShape {
			views = append(views, n.ShapedView())
		} else {
			views = append(views, n.View())
		}
	}

	return views
}
