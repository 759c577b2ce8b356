package extractor

import sitter "github.com/smacker/go-tree-sitter"

// Literal is one string literal found in a source file.
type Literal struct {
	Filepath  string `json:"filepath"`
	Language  string `json:"language"`
	StartLine int    `json:"start_line"` // 1-based
	Column    int    `json:"column"`     // 1-based, in bytes
	StartByte int    `json:"start_byte"`
	Content   string `json:"content"` // raw source, quotes included
	Value     string `json:"value"`   // content between the quotes, escapes untouched
}

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	ExtractLiteral(captureName string, node *sitter.Node, sourceCode []byte, filepath string) *Literal
}
