package pipeline

import (
	"context"

	"srmap/internal/extractor"
	"srmap/internal/remap"
)

// Finding is one instruction found in a source string literal.
type Finding struct {
	File        string
	Line        int
	Column      int
	Instruction remap.Instruction
	Resolved    string
	Err         error
}

// Scan parses each file, finds instructions inside string literals and
// resolves them without writing anything. Comments and identifiers that
// happen to look like instructions are not reported.
func Scan(ctx context.Context, ext *extractor.Extractor, rw *remap.Rewriter, files []string) ([]Finding, error) {
	var findings []Finding
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return findings, err
		}

		literals, err := ext.ExtractFromFile(ctx, path)
		if err != nil {
			return findings, err
		}
		for _, lit := range literals {
			for _, ins := range remap.FindInstructions(lit.Value) {
				resolved, err := rw.Resolve(ins)
				findings = append(findings, Finding{
					File:        path,
					Line:        lit.StartLine,
					Column:      lit.Column,
					Instruction: ins,
					Resolved:    resolved,
					Err:         err,
				})
			}
		}
	}
	return findings, nil
}
