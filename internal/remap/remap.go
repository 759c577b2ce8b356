// Package remap finds SR placeholder instructions in text and string
// constants and replaces them with names resolved for a goal.
//
// An instruction is "SR" + C|M|F + optional "/" + "(" + reference + ")",
// e.g. SRC(net.example.Foo) or SRM/(net.example.Foo bar). With "/" every
// '.' in the resolved name becomes '/'.
package remap

import (
	"fmt"
	"regexp"
	"strings"

	"srmap/internal/resolver"
)

var (
	// constantPattern matches an instruction anywhere in a string constant.
	// The reference may hold one parenthesized parameter list.
	constantPattern = regexp.MustCompile(`SR([CMF])(/)?\(((?:[^"()]|\([^"()]*\))*)\)`)
	// textPattern matches an instruction that makes up a whole string literal in source text.
	textPattern = regexp.MustCompile(`"SR([CMF])(/)?\(((?:[^"()]|\([^"()]*\))*)\)"`)
)

// Instruction is one placeholder occurrence.
type Instruction struct {
	Kind      resolver.Kind
	Slashes   bool
	Reference string
	Text      string // the matched span, quotes included in source text
	Start     int    // byte offsets of Text in the scanned buffer
	End       int
}

func instructionAt(buf []byte, base int, loc []int) Instruction {
	return Instruction{
		Kind:      resolver.Kind(buf[base+loc[2]]),
		Slashes:   loc[4] >= 0,
		Reference: string(buf[base+loc[6] : base+loc[7]]),
		Text:      string(buf[base+loc[0] : base+loc[1]]),
		Start:     base + loc[0],
		End:       base + loc[1],
	}
}

// FindInstructions lists the instructions in a string constant in order.
func FindInstructions(s string) []Instruction {
	buf := []byte(s)
	var out []Instruction
	for _, loc := range constantPattern.FindAllSubmatchIndex(buf, -1) {
		out = append(out, instructionAt(buf, 0, loc))
	}
	return out
}

// InstructionError reports an instruction that could not be resolved.
type InstructionError struct {
	Instruction Instruction
	Err         error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("could not resolve %s at offset %d: %v", e.Instruction.Text, e.Instruction.Start, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

// Rewriter replaces instructions using one resolver and goal.
type Rewriter struct {
	resolver *resolver.Resolver
	goal     resolver.Goal
}

// New creates a rewriter for a goal.
func New(r *resolver.Resolver, goal resolver.Goal) *Rewriter {
	return &Rewriter{resolver: r, goal: goal}
}

// Goal returns the goal the rewriter resolves into.
func (rw *Rewriter) Goal() resolver.Goal {
	return rw.goal
}

// Resolve resolves a single instruction, applying the slash flag.
func (rw *Rewriter) Resolve(ins Instruction) (string, error) {
	value, err := rw.resolver.Resolve(ins.Kind, ins.Reference, rw.goal)
	if err != nil {
		return "", &InstructionError{Instruction: ins, Err: err}
	}
	if ins.Slashes {
		value = strings.ReplaceAll(value, ".", "/")
	}
	return value, nil
}

// RewriteText replaces every string literal in source text that consists
// of an instruction with the quoted resolved name and returns how many were
// replaced. The input is never modified; when nothing changes the same
// slice is returned.
func (rw *Rewriter) RewriteText(buf []byte) ([]byte, int, error) {
	return rw.rewrite(buf, textPattern, true)
}

// RewriteConstant replaces every instruction inside an extracted string constant.
func (rw *Rewriter) RewriteConstant(value string) (string, bool, error) {
	out, n, err := rw.rewrite([]byte(value), constantPattern, false)
	if err != nil || n == 0 {
		return value, false, err
	}
	return string(out), true, nil
}

// RewriteConstants rewrites a sequence of constants and calls replace for
// each one that changed. It returns the indices of the changed constants
// and stops at the first constant that fails.
func (rw *Rewriter) RewriteConstants(values []string, replace func(i int, value string)) ([]int, error) {
	var changed []int
	for i, v := range values {
		nv, ok, err := rw.RewriteConstant(v)
		if err != nil {
			return changed, fmt.Errorf("constant #%d: %w", i, err)
		}
		if !ok {
			continue
		}
		if replace != nil {
			replace(i, nv)
		}
		changed = append(changed, i)
	}
	return changed, nil
}

func (rw *Rewriter) rewrite(buf []byte, pattern *regexp.Regexp, quoted bool) ([]byte, int, error) {
	orig := buf
	replaced := 0
	pos := 0
	for pos <= len(buf) {
		loc := pattern.FindSubmatchIndex(buf[pos:])
		if loc == nil {
			break
		}
		ins := instructionAt(buf, pos, loc)

		value, err := rw.Resolve(ins)
		if err != nil {
			return orig, 0, err
		}
		if quoted {
			value = `"` + value + `"`
		}

		next := make([]byte, 0, len(buf)-(ins.End-ins.Start)+len(value))
		next = append(next, buf[:ins.Start]...)
		next = append(next, value...)
		next = append(next, buf[ins.End:]...)

		buf = next
		pos = ins.Start + len(value)
		replaced++
	}
	return buf, replaced, nil
}
