// Package expand evaluates templates against a data model using pongo2
// (Django syntax: {{ value }}, {% for %}, {% include %}, {% extends %}).
//
// On top of pongo2 it accepts the ${expr} interpolation shorthand. A
// shorthand whose leading term is a variable path fails evaluation when that
// variable is undefined, while {{ expr }} keeps pongo2's lenient behavior:
//
//	Hello ${customer.name}        -> error if customer.name is undefined
//	Hello {{ customer.nickname }} -> empty if undefined
//
// Every Expand call builds a fresh pongo2 template set whose loader reads
// through the caller's source, so {% include %} and {% extends %} resolve
// with the same precedence as top-level names and nothing is cached.
package expand
