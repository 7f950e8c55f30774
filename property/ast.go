// Package property implements the property language grammar the
// environment configuration pipeline parses (§6 "Property parser
// contract"): a tree of named groups and values, composite groups
// nesting with brace delimiters, leaf entries assigning a value, and
// file inclusion.
package property

// Node is one entry in a property file: a Value, a Composite group, or
// an Include directive. Comments and blank lines are consumed by the
// grammar and never appear in the AST.
type Node struct {
	Value     *ValueEntry     `  @@`
	Composite *CompositeEntry `| @@`
	Include   *IncludeEntry   `| @@`
}

// ValueEntry is a leaf "name = value;" assignment, optionally carrying a
// type specification ("name : type = value;") consumed by the builder
// synthesis step (§4.9).
type ValueEntry struct {
	Name  string `@Ident`
	Type  string `( ":" @Ident )?`
	Value string `"=" @(String | Ident | Number)`
	_     string `";"`
}

// CompositeEntry is a named group of nested entries, "name { ... }",
// the unit the cascading step (§4.7) overlays parent-onto-child on.
type CompositeEntry struct {
	Name     string  `@Ident`
	Children []*Node `"{" @@* "}"`
}

// IncludeEntry names another property file to pull into this one's
// scope, "include \"path\";". Parse only records the path; the
// environment loader reads and splices the included file.
type IncludeEntry struct {
	Path string `"include" @String`
	_    string `";"`
}

// File is the parsed contents of one property source: an ordered list
// of top-level nodes.
type File struct {
	Nodes []*Node `@@*`
}
