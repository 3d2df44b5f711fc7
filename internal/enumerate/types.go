package enumerate

import (
	"apistub/internal/common"
	"apistub/internal/typedef"
)

// Kind tells fields from callables.
type Kind int

const (
	KindField Kind = iota
	KindMethod
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return common.UnknownStr
	}
}

// Member is a raw member descriptor. Expr is the unresolved type expression
// of a field; Callable is set for methods.
type Member struct {
	Name     string
	Expr     string
	Kind     Kind
	Callable *typedef.Callable
}

// Options tunes enumeration.
type Options struct {
	// IncludePrivate keeps private-by-convention members.
	IncludePrivate bool
}
