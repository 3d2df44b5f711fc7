package resolve

import (
	"sort"
	"strings"

	"apistub/internal/common"
)

// Index records which qualifiers each short type name was seen with during
// a scan. It is immutable once built and safe to share between goroutines.
type Index struct {
	qualifiers map[string][]string
}

// NewIndex builds an Index from qualified names such as "azure.core.Pipeline"
// or "github.com/acme/inv.Item". Unqualified names are ignored.
func NewIndex(names ...string) *Index {
	sets := make(map[string]map[string]struct{})

	for _, n := range names {
		qualifier, short, ok := common.SplitQualified(n)
		if !ok {
			continue
		}

		if sets[short] == nil {
			sets[short] = make(map[string]struct{})
		}

		sets[short][qualifier] = struct{}{}
	}

	ix := &Index{qualifiers: make(map[string][]string, len(sets))}
	for short, set := range sets {
		qs := make([]string, 0, len(set))
		for q := range set {
			qs = append(qs, q)
		}

		sort.Strings(qs)
		ix.qualifiers[short] = qs
	}

	return ix
}

// Ambiguous reports whether short was seen under more than one qualifier.
func (ix *Index) Ambiguous(short string) bool {
	if ix == nil {
		return false
	}

	return len(ix.qualifiers[short]) > 1
}

// Qualifiers returns the sorted qualifiers recorded for short.
func (ix *Index) Qualifiers(short string) []string {
	if ix == nil {
		return nil
	}

	return append([]string(nil), ix.qualifiers[short]...)
}

// Len returns the number of distinct short names in the index.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}

	return len(ix.qualifiers)
}

// QualifiedNames returns every qualified name referenced by expr. Malformed
// expressions yield nothing.
func QualifiedNames(expr string) []string {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	e, err := Parse(expr)
	if err != nil {
		return nil
	}

	var out []string

	e.Walk(func(n *Expr) {
		if n.Kind != ExprName {
			return
		}

		if _, _, ok := common.SplitQualified(n.Text); ok {
			out = append(out, n.Text)
		}
	})

	return out
}
