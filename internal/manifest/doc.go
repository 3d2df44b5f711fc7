// Package manifest loads precomputed type metadata from YAML, for runtimes
// that have no front-end of their own.
//
// # Schema Overview
//
//	version: "1"
//	module: shop.models
//	privacy: underscore   # or "go": unexported names are private
//	types:
//	  - name: FakeInventoryItem
//	    # Ordered mapping shorthand: field name -> type expression
//	    fields:
//	      name: str
//	      unit_price: float
//	    methods:
//	      - name: total_cost
//	        params: [self]
//	        returns: float
//	  - name: FakeTypedDict
//	    markers: record
//	    # Full form, one entry per field
//	    fields:
//	      - name: name
//	        type: str
//	  - name: Color
//	    markers: [enum]
//	    values: [RED, GREEN]
//
// A type's module and privacy convention default to the file-level ones. Params accept a bare
// name or a {name, type} entry.
package manifest
