/*
Package tonl encodes and decodes TONL (Token-Optimized Notation Language), a
line-oriented, indentation-sensitive text form of the JSON data model. The
API mirrors the standard `encoding/json` package.

A document starts with a version header and holds one entry per line. Arrays
of objects sharing their keys are written as tables, so the keys appear once:

	#version 1.0
	total: 2
	users[2]{id,name,role}:
	  1,Alice,admin
	  2,Bob,user

The encoder picks one of six layouts for every value from its shape alone:
scalar, tabular, mixed array, primitive array, single-line object and
multi-line object. Object keys are written in sorted order, so equal values
always encode to the same bytes.

1. Encoding and Decoding Go Values

Marshal and Unmarshal convert between TONL and Go values:

	type User struct {
		ID   int    `tonl:"id"`
		Name string `tonl:"name"`
	}

	out, err := tonl.Marshal(map[string][]User{"users": users})
	if err != nil {
		// handle error
	}

	var back map[string][]User
	if err := tonl.Unmarshal(out, &back); err != nil {
		// handle error
	}

2. Generic Trees

Parse returns the generic value tree (nil, bool, float64, string, []any and
map[string]any), the same shapes encoding/json produces for an interface
value. MarshalSmart chooses the delimiter least likely to force quoting:

	out, err := tonl.MarshalSmart(map[string]any{"note": "a, b, c"})
	// #version 1.0
	// #delimiter |
	// note: a, b, c

Decoding is lenient by default: lines that cannot be read are skipped and
surplus row values dropped, with each repair logged at debug level. The Strict
option turns these into errors. Resource limits (input size, line length,
fields per line, nesting depth) always apply and fail with a *SecurityError.

Customization is available via struct field tags (e.g., `tonl:"key,omitempty"`,
with `json` tags as a fallback) and by implementing the tonl.Marshaler and
tonl.Unmarshaler interfaces.
*/
package tonl
