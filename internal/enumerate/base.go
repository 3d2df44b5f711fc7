package enumerate

// universalBase holds the members every type inherits from the implicit root
// type. It is read-only; concurrent enumerations share it.
var universalBase = map[string]struct{}{
	"__class__":         {},
	"__delattr__":       {},
	"__dir__":           {},
	"__doc__":           {},
	"__eq__":            {},
	"__format__":        {},
	"__ge__":            {},
	"__getattribute__":  {},
	"__getstate__":      {},
	"__gt__":            {},
	"__hash__":          {},
	"__init__":          {},
	"__init_subclass__": {},
	"__le__":            {},
	"__lt__":            {},
	"__ne__":            {},
	"__new__":           {},
	"__reduce__":        {},
	"__reduce_ex__":     {},
	"__repr__":          {},
	"__setattr__":       {},
	"__sizeof__":        {},
	"__str__":           {},
	"__subclasshook__":  {},
}

// universalOwners names the root type as providers may report it.
var universalOwners = map[string]struct{}{
	"object":          {},
	"builtins.object": {},
}

// IsUniversalMember reports whether name is defined by the universal base type.
func IsUniversalMember(name string) bool {
	_, ok := universalBase[name]
	return ok
}

// IsUniversalOwner reports whether owner names the universal base type.
func IsUniversalOwner(owner string) bool {
	_, ok := universalOwners[owner]
	return ok
}
