package property

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	goerrors "github.com/alecthomas/errors"
)

var propertyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*.*?\*/`},
	{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.\-]*`},
	{Name: "Punct", Pattern: `[{}:=;]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[File](
	participle.Lexer(propertyLexer),
	participle.Elide("Comment", "whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse parses raw property-file text into a File AST, the external
// collaborator shape §6 names for the environment configuration
// pipeline's ingestion step (§4.7).
func Parse(filename, text string) (*File, error) {
	f, err := parser.ParseString(filename, text)
	if err != nil {
		return nil, goerrors.Errorf("property: parse %s: %w", filename, err)
	}
	return f, nil
}
