package resolve

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"apistub/internal/common"
)

// Unknown is the canonical name of an absent or unresolvable type.
const Unknown = common.UnknownStr

// builtins maps builtin spellings to their canonical short token.
var builtins = map[string]string{
	"str":              "str",
	"string":           "str",
	"builtins.str":     "str",
	"typing.Text":      "str",
	"int":              "int",
	"builtins.int":     "int",
	"float":            "float",
	"builtins.float":   "float",
	"bool":             "bool",
	"builtins.bool":    "bool",
	"bytes":            "bytes",
	"builtins.bytes":   "bytes",
	"complex":          "complex",
	"builtins.complex": "complex",
	"None":             "None",
	"NoneType":         "None",
	"types.NoneType":   "None",
	"Any":              "Any",
	"any":              "Any",
	"typing.Any":       "Any",
	"object":           "object",
	"builtins.object":  "object",
}

// literalForms are generics whose string arguments are values, not
// forward references.
var literalForms = map[string]bool{
	"Literal": true,
}

// Resolver canonicalizes raw type expressions. It is safe for concurrent use.
type Resolver struct {
	index *Index
	cache *lru.Cache[string, resolved]
}

type resolved struct {
	name string
	err  error
}

// New creates a Resolver over a scan index. A nil index treats every short
// name as unambiguous.
func New(index *Index) *Resolver {
	return &Resolver{index: index}
}

// NewCached creates a Resolver that remembers up to size rendered
// expressions. The index must not change while the Resolver is in use.
func NewCached(index *Index, size int) (*Resolver, error) {
	if size <= 0 {
		return New(index), nil
	}

	cache, err := lru.New[string, resolved](size)
	if err != nil {
		return nil, err
	}

	return &Resolver{index: index, cache: cache}, nil
}

// Resolve returns the canonical name of expr. Absent expressions resolve to
// Unknown without error; malformed ones return an error wrapping ErrMalformed.
func (r *Resolver) Resolve(expr string) (string, error) {
	if strings.TrimSpace(expr) == "" {
		return Unknown, nil
	}

	if r.cache == nil {
		return r.resolve(expr)
	}

	if hit, ok := r.cache.Get(expr); ok {
		return hit.name, hit.err
	}

	name, err := r.resolve(expr)
	r.cache.Add(expr, resolved{name: name, err: err})

	return name, err
}

// CacheLen reports the number of cached expressions.
func (r *Resolver) CacheLen() int {
	if r.cache == nil {
		return 0
	}

	return r.cache.Len()
}

func (r *Resolver) resolve(expr string) (string, error) {
	e, err := Parse(expr)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := r.render(&b, e, false); err != nil {
		return "", err
	}

	return b.String(), nil
}

// ResolveOrUnknown resolves expr, substituting Unknown on failure. The
// failure is returned alongside so callers can report it.
func (r *Resolver) ResolveOrUnknown(expr string) (string, error) {
	name, err := r.Resolve(expr)
	if err != nil {
		return Unknown, err
	}

	return name, nil
}

func (r *Resolver) render(b *strings.Builder, e *Expr, literal bool) error {
	switch e.Kind {
	case ExprName:
		name := r.Name(e.Text)
		b.WriteString(name)

		if e.Args == nil {
			return nil
		}

		b.WriteByte('[')

		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			argLiteral := literalForms[name] || (name == "Annotated" && i > 0)
			if err := r.render(b, a, argLiteral); err != nil {
				return err
			}
		}

		b.WriteByte(']')
	case ExprList:
		b.WriteByte('[')

		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}

			if err := r.render(b, a, literal); err != nil {
				return err
			}
		}

		b.WriteByte(']')
	case ExprUnion:
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(" | ")
			}

			if err := r.render(b, a, literal); err != nil {
				return err
			}
		}
	case ExprString:
		if literal {
			b.WriteString(strconv.Quote(e.Text))
			return nil
		}

		// forward reference
		ref, err := Parse(e.Text)
		if err != nil {
			return err
		}

		return r.render(b, ref, false)
	default:
		b.WriteString(e.Text)
	}

	return nil
}

// Name canonicalizes a single dotted name.
func (r *Resolver) Name(name string) string {
	if canonical, ok := builtins[name]; ok {
		return canonical
	}

	if rest, ok := strings.CutPrefix(name, "builtins."); ok {
		return rest
	}

	qualifier, short, ok := common.SplitQualified(name)
	if !ok {
		return name
	}

	if !r.index.Ambiguous(short) {
		return short
	}

	if strings.Contains(qualifier, "/") {
		return common.PkgAlias(qualifier) + "." + short
	}

	return name
}
