package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// printer writes progress lines, with an emoji prefix on terminals only.
type printer struct {
	w     io.Writer
	fancy bool
}

var out = newPrinter(os.Stdout)

func newPrinter(f *os.File) *printer {
	fd := f.Fd()
	return &printer{w: f, fancy: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (p *printer) step(emoji, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.fancy {
		line = emoji + " " + line
	}
	fmt.Fprintln(p.w, line)
}
