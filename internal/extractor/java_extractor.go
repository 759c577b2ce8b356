package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// JavaExtractor implements LanguageExtractor for Java.
type JavaExtractor struct{}

func (j *JavaExtractor) GetLanguage() *sitter.Language {
	return java.GetLanguage()
}

func (j *JavaExtractor) GetQuery() string {
	return `(string_literal) @string`
}

func (j *JavaExtractor) ExtractLiteral(captureName string, node *sitter.Node, sourceCode []byte, filepath string) *Literal {
	if captureName != "string" {
		return nil
	}

	content := node.Content(sourceCode)
	start := node.StartPoint()
	return &Literal{
		Filepath:  filepath,
		StartLine: int(start.Row) + 1,
		Column:    int(start.Column) + 1,
		StartByte: int(node.StartByte()),
		Content:   content,
		Value:     unquoteJava(content),
	}
}

// unquoteJava strips the delimiters of a string literal or text block.
func unquoteJava(s string) string {
	if strings.HasPrefix(s, `"""`) && strings.HasSuffix(s, `"""`) && len(s) >= 6 {
		body := s[3 : len(s)-3]
		// A text block's content starts after the line terminator following the opening delimiter.
		if i := strings.IndexByte(body, '\n'); i >= 0 {
			body = body[i+1:]
		}
		return body
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
