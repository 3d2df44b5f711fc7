package analyze

import (
	"go/types"
	"strings"
)

// TypeString renders a Go type as a type expression understood by the
// resolver grammar:
//   - *T -> ptr[T], []T -> list[T], [N]T -> array[T]
//   - map[K]V -> dict[K, V], chan T -> chan[T]
//   - func(A, B) R -> Callable[[A, B], R]
//   - named types -> pkgpath.Name[TypeArgs]
//   - empty interface -> any
func TypeString(t types.Type) string {
	var b strings.Builder
	writeType(&b, t)

	return b.String()
}

func writeType(b *strings.Builder, t types.Type) {
	switch tt := t.(type) {
	case *types.Basic:
		b.WriteString(tt.Name())
	case *types.Alias:
		writeNamed(b, tt.Obj(), tt.TypeArgs())
	case *types.Named:
		writeNamed(b, tt.Obj(), tt.TypeArgs())
	case *types.TypeParam:
		b.WriteString(tt.Obj().Name())
	case *types.Pointer:
		writeGeneric(b, "ptr", tt.Elem())
	case *types.Slice:
		writeGeneric(b, "list", tt.Elem())
	case *types.Array:
		writeGeneric(b, "array", tt.Elem())
	case *types.Map:
		writeGeneric(b, "dict", tt.Key(), tt.Elem())
	case *types.Chan:
		writeGeneric(b, "chan", tt.Elem())
	case *types.Signature:
		writeSignature(b, tt)
	case *types.Interface:
		if tt.Empty() {
			b.WriteString("any")
			return
		}

		b.WriteString("interface")
	case *types.Struct:
		b.WriteString("struct")
	case *types.Tuple:
		writeTuple(b, tt)
	default:
		b.WriteString("unknown")
	}
}

func writeNamed(b *strings.Builder, obj *types.TypeName, args *types.TypeList) {
	// predeclared names (error, comparable) have no package
	if obj.Pkg() != nil {
		b.WriteString(obj.Pkg().Path())
		b.WriteByte('.')
	}

	b.WriteString(obj.Name())

	if args == nil || args.Len() == 0 {
		return
	}

	b.WriteByte('[')

	for i := range args.Len() {
		if i > 0 {
			b.WriteString(", ")
		}

		writeType(b, args.At(i))
	}

	b.WriteByte(']')
}

func writeGeneric(b *strings.Builder, name string, args ...types.Type) {
	b.WriteString(name)
	b.WriteByte('[')

	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}

		writeType(b, a)
	}

	b.WriteByte(']')
}

func writeSignature(b *strings.Builder, sig *types.Signature) {
	b.WriteString("Callable[[")

	params := sig.Params()
	for i := range params.Len() {
		if i > 0 {
			b.WriteString(", ")
		}

		writeType(b, params.At(i).Type())
	}

	b.WriteString("], ")
	b.WriteString(ResultString(sig))
	b.WriteByte(']')
}

func writeTuple(b *strings.Builder, tuple *types.Tuple) {
	b.WriteString("tuple[")

	for i := range tuple.Len() {
		if i > 0 {
			b.WriteString(", ")
		}

		writeType(b, tuple.At(i).Type())
	}

	b.WriteByte(']')
}

// ResultString renders the results of sig: None for no result, the single
// result type, or tuple[...] for several.
func ResultString(sig *types.Signature) string {
	results := sig.Results()

	switch results.Len() {
	case 0:
		return "None"
	case 1:
		return TypeString(results.At(0).Type())
	default:
		return TypeString(results)
	}
}
