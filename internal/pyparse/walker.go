package pyparse

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"apistub/internal/typedef"
)

var generatedInitDecorators = setOf(
	"dataclass",
	"define",
	"frozen",
	"dataclasses.dataclass",
	"pydantic.dataclasses.dataclass",
	"attr.s",
	"attr.attrs",
	"attr.define",
	"attr.frozen",
	"attr.mutable",
	"attrs.define",
	"attrs.frozen",
	"attrs.mutable",
)

var recordBases = setOf(
	"TypedDict",
	"typing.TypedDict",
	"typing_extensions.TypedDict",
)

var enumBases = setOf(
	"Enum", "IntEnum", "StrEnum", "Flag", "IntFlag",
	"enum.Enum", "enum.IntEnum", "enum.StrEnum", "enum.Flag", "enum.IntFlag",
)

// callableModifiers are decorators reported as method modifiers.
var callableModifiers = map[string]string{
	"classmethod":               "classmethod",
	"staticmethod":              "staticmethod",
	"property":                  "property",
	"functools.cached_property": "property",
	"abstractmethod":            "abstractmethod",
	"abc.abstractmethod":        "abstractmethod",
}

func setOf(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return set
}

// synthesizedDunders are the members a generated-init decorator adds.
var synthesizedDunders = []string{"__init__", "__repr__", "__eq__"}

type walker struct {
	mod    *Module
	src    []byte
	locals map[string]bool
	defs   map[string]*typedef.Static
}

func newWalker(mod *Module, src []byte) *walker {
	return &walker{
		mod:    mod,
		src:    src,
		locals: make(map[string]bool),
		defs:   make(map[string]*typedef.Static),
	}
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}

	return n.Content(w.src)
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}

	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := range int(n.NamedChildCount()) {
		out = append(out, n.NamedChild(i))
	}

	return out
}

// scan records imports and the names of module-level classes, so
// annotations can be qualified regardless of declaration order.
func (w *walker) scan(root *sitter.Node) {
	for _, stmt := range namedChildren(root) {
		switch stmt.Type() {
		case "import_statement":
			w.importStatement(stmt)
		case "import_from_statement":
			w.importFromStatement(stmt)
		case "class_definition":
			w.locals[w.text(stmt.ChildByFieldName("name"))] = true
		case "decorated_definition":
			if def := stmt.ChildByFieldName("definition"); def != nil && def.Type() == "class_definition" {
				w.locals[w.text(def.ChildByFieldName("name"))] = true
			}
		case "expression_statement":
			if name, _, ok := w.typedDictCall(stmt); ok {
				w.locals[name] = true
			}
		}
	}
}

func (w *walker) importStatement(stmt *sitter.Node) {
	for _, n := range namedChildren(stmt) {
		switch n.Type() {
		case "dotted_name":
			name := w.text(n)
			head, _, _ := strings.Cut(name, ".")
			w.mod.Imports[head] = head
		case "aliased_import":
			w.mod.Imports[w.text(n.ChildByFieldName("alias"))] = w.text(n.ChildByFieldName("name"))
		}
	}
}

func (w *walker) importFromStatement(stmt *sitter.Node) {
	moduleNode := stmt.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}

	from := w.text(moduleNode)
	if moduleNode.Type() == "relative_import" {
		from = resolveRelative(w.mod.Name, from)
	}

	for _, n := range namedChildren(stmt) {
		if n.StartByte() == moduleNode.StartByte() {
			continue
		}

		switch n.Type() {
		case "dotted_name":
			name := w.text(n)
			w.mod.Imports[name] = join(from, name)
		case "aliased_import":
			w.mod.Imports[w.text(n.ChildByFieldName("alias"))] = join(from, w.text(n.ChildByFieldName("name")))
		}
	}
}

func join(module, name string) string {
	if module == "" {
		return name
	}

	return module + "." + name
}

// resolveRelative turns a relative import ("..models") into an absolute
// module name as seen from module.
func resolveRelative(module, rel string) string {
	dots := len(rel) - len(strings.TrimLeft(rel, "."))
	rest := rel[dots:]

	parts := strings.Split(module, ".")
	if dots > len(parts) {
		return rest
	}

	base := strings.Join(parts[:len(parts)-dots], ".")
	if base == "" {
		return rest
	}

	if rest == "" {
		return base
	}

	return base + "." + rest
}

// qualifyName rewrites the head of a dotted name through the imports, or
// qualifies a module-level class with the module name.
func (w *walker) qualifyName(name string) string {
	head, rest, dotted := strings.Cut(name, ".")

	if target, ok := w.mod.Imports[head]; ok {
		if dotted {
			return target + "." + rest
		}

		return target
	}

	if !dotted && w.locals[head] {
		return join(w.mod.Name, head)
	}

	return name
}

// build emits definitions for module-level classes and functional TypedDict
// declarations, in source order.
func (w *walker) build(root *sitter.Node) {
	for _, stmt := range namedChildren(root) {
		switch stmt.Type() {
		case "class_definition":
			w.classDefinition(stmt, nil)
		case "decorated_definition":
			def := stmt.ChildByFieldName("definition")
			if def != nil && def.Type() == "class_definition" {
				w.classDefinition(def, w.decorators(stmt))
			}
		case "expression_statement":
			if name, fields, ok := w.typedDictCall(stmt); ok {
				w.emit(&typedef.Static{
					TypeName:   name,
					ModulePath: w.mod.Name,
					Marks:      typedef.MarkerRecord,
					Fields:     fields,
				})
			}
		}
	}
}

func (w *walker) emit(def *typedef.Static) {
	w.defs[def.TypeName] = def
	w.mod.Definitions = append(w.mod.Definitions, def)
}

// decorators returns the qualified decorator names of a decorated
// definition. Decorator calls report the called name.
func (w *walker) decorators(decorated *sitter.Node) []string {
	var out []string

	for _, n := range namedChildren(decorated) {
		if n.Type() != "decorator" {
			continue
		}

		for _, expr := range namedChildren(n) {
			if expr.Type() == "call" {
				expr = expr.ChildByFieldName("function")
			}

			if expr != nil && (expr.Type() == "identifier" || expr.Type() == "attribute") {
				out = append(out, w.qualifyName(w.text(expr)))
			}
		}
	}

	return out
}

func (w *walker) baseClasses(class *sitter.Node) []string {
	var bases []string

	for _, n := range namedChildren(class.ChildByFieldName("superclasses")) {
		switch n.Type() {
		case "identifier", "attribute":
			bases = append(bases, w.text(n))
		case "subscript":
			bases = append(bases, w.text(n.ChildByFieldName("value")))
		}
	}

	return bases
}

func (w *walker) classDefinition(class *sitter.Node, decorators []string) {
	def := &typedef.Static{
		TypeName:   w.text(class.ChildByFieldName("name")),
		ModulePath: w.mod.Name,
	}

	if def.TypeName == "" {
		return
	}

	var inherited []*typedef.Static

	for _, base := range w.baseClasses(class) {
		if local, ok := w.defs[base]; ok {
			inherited = append(inherited, local)

			if local.Marks.Has(typedef.MarkerRecord) {
				def.Marks |= typedef.MarkerRecord
			}

			continue
		}

		q := w.qualifyName(base)
		switch {
		case recordBases[q] || recordBases[base]:
			def.Marks |= typedef.MarkerRecord
		case enumBases[q]:
			def.Marks |= typedef.MarkerEnumBase
		}
	}

	for _, d := range decorators {
		if generatedInitDecorators[d] {
			def.Marks |= typedef.MarkerGeneratedInit
		}
	}

	// a record's field mapping includes the fields of its record bases
	if def.Marks.Has(typedef.MarkerRecord) {
		for _, base := range inherited {
			def.Fields = append(def.Fields, base.Fields...)
		}
	}

	w.classBody(def, class.ChildByFieldName("body"))

	for _, base := range inherited {
		for _, m := range base.Methods {
			if m.Owner == "" {
				m.Owner = base.TypeName
			}

			def.Methods = append(def.Methods, m)
		}
	}

	if def.Marks.Has(typedef.MarkerGeneratedInit) {
		for _, name := range synthesizedDunders {
			def.Methods = append(def.Methods, typedef.Callable{Name: name, Synthesized: true})
		}
	}

	w.emit(def)
}

func (w *walker) classBody(def *typedef.Static, body *sitter.Node) {
	enum := def.Marks.Has(typedef.MarkerEnumBase)

	for _, stmt := range namedChildren(body) {
		switch stmt.Type() {
		case "expression_statement":
			assign := stmt.NamedChild(0)
			if assign == nil || assign.Type() != "assignment" {
				continue
			}

			left := assign.ChildByFieldName("left")
			if left == nil || left.Type() != "identifier" {
				continue
			}

			name := w.text(left)
			typ := assign.ChildByFieldName("type")
			value := assign.ChildByFieldName("right")

			if typ != nil {
				def.Fields = append(def.Fields, typedef.Annotation{Name: name, Expr: w.qualify(w.text(typ))})
			}

			if enum && value != nil {
				def.Values = append(def.Values, name)
			}
		case "function_definition":
			def.Methods = append(def.Methods, w.function(stmt, nil))
		case "decorated_definition":
			fn := stmt.ChildByFieldName("definition")
			if fn != nil && fn.Type() == "function_definition" {
				def.Methods = append(def.Methods, w.function(fn, w.decorators(stmt)))
			}
		}
	}
}

func (w *walker) function(fn *sitter.Node, decorators []string) typedef.Callable {
	c := typedef.Callable{
		Name:    w.text(fn.ChildByFieldName("name")),
		Params:  w.parameters(fn.ChildByFieldName("parameters")),
		Returns: w.qualify(w.text(fn.ChildByFieldName("return_type"))),
	}

	if first := fn.Child(0); first != nil && first.Type() == "async" {
		c.Modifiers = append(c.Modifiers, "async")
	}

	for _, d := range decorators {
		if m, ok := callableModifiers[d]; ok && !slices.Contains(c.Modifiers, m) {
			c.Modifiers = append(c.Modifiers, m)
		}
	}

	return c
}

func (w *walker) parameters(params *sitter.Node) []typedef.Param {
	var out []typedef.Param

	for _, n := range namedChildren(params) {
		switch n.Type() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
			out = append(out, typedef.Param{Name: w.text(n)})
		case "typed_parameter":
			var name string
			if first := n.NamedChild(0); first != nil {
				name = w.text(first)
			}

			out = append(out, typedef.Param{Name: name, Expr: w.qualify(w.text(n.ChildByFieldName("type")))})
		case "default_parameter":
			out = append(out, typedef.Param{Name: w.text(n.ChildByFieldName("name"))})
		case "typed_default_parameter":
			out = append(out, typedef.Param{
				Name: w.text(n.ChildByFieldName("name")),
				Expr: w.qualify(w.text(n.ChildByFieldName("type"))),
			})
		}
	}

	return out
}

// typedDictCall recognizes Name = TypedDict("Name", {...}) and
// Name = TypedDict("Name", field=type) declarations.
func (w *walker) typedDictCall(stmt *sitter.Node) (string, []typedef.Annotation, bool) {
	assign := stmt.NamedChild(0)
	if assign == nil || assign.Type() != "assignment" {
		return "", nil, false
	}

	left, right := assign.ChildByFieldName("left"), assign.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" || right.Type() != "call" {
		return "", nil, false
	}

	callee := w.text(right.ChildByFieldName("function"))
	if !recordBases[callee] && !recordBases[w.qualifyName(callee)] {
		return "", nil, false
	}

	var fields []typedef.Annotation

	for _, arg := range namedChildren(right.ChildByFieldName("arguments")) {
		switch arg.Type() {
		case "dictionary":
			for _, pair := range namedChildren(arg) {
				if pair.Type() != "pair" {
					continue
				}

				key := pair.ChildByFieldName("key")
				if key == nil || key.Type() != "string" {
					continue
				}

				fields = append(fields, typedef.Annotation{
					Name: unquote(w.text(key)),
					Expr: w.qualify(w.text(pair.ChildByFieldName("value"))),
				})
			}
		case "keyword_argument":
			name := w.text(arg.ChildByFieldName("name"))
			if name == "total" {
				continue
			}

			fields = append(fields, typedef.Annotation{
				Name: name,
				Expr: w.qualify(w.text(arg.ChildByFieldName("value"))),
			})
		}
	}

	return w.text(left), fields, true
}

// unquote strips string prefixes and quotes from a string literal.
func unquote(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}

	return s
}
