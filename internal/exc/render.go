// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Renderer writes diagnostics to a terminal with the source excerpt and
// marker style popularized by rustc. Sources are loaded lazily by URI and
// cached, so rendering many diagnostics reads each file once.
type Renderer struct {
	out     io.Writer
	sources map[string][]string
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:     out,
		sources: map[string][]string{},
	}
}

// RegisterSource makes an in-memory source available for excerpts, for
// callers whose input never touched the filesystem.
func (self *Renderer) RegisterSource(uri string, source string) {
	self.sources[uri] = strings.Split(source, "\n")
}

func (self *Renderer) severityColor(s Severity) *color.Color {
	switch s {
	case SeverityError:
		return color.New(color.FgRed, color.Bold)
	case SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}

func (self *Renderer) lines(uri string) []string {
	if lines, ok := self.sources[uri]; ok {
		return lines
	}
	var lines []string
	if body, err := os.ReadFile(uri); err == nil {
		lines = strings.Split(string(body), "\n")
	}
	self.sources[uri] = lines
	return lines
}

// Render writes one diagnostic:
//
//	error[E002]: unexpected token END_VAR in declaration
//	 --> prog.st:3:1
//	  |
//	3 | END_VAR
//	  | ^
func (self *Renderer) Render(e Exception) {
	level := self.severityColor(e.Severity()).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	loc := e.Location()
	fmt.Fprintf(self.out, "%s: %s\n",
		level(fmt.Sprintf("%s[%s]", e.Severity(), e.Code())), e.Message())
	fmt.Fprintf(self.out, " %s %s:%d:%d\n", dim("-->"), loc.URI, loc.Line, loc.Column)

	lines := self.lines(loc.URI)
	line := int(loc.Line)
	if line < 1 || line > len(lines) {
		return
	}
	number := fmt.Sprintf("%d", line)
	indent := strings.Repeat(" ", len(number))
	fmt.Fprintf(self.out, "%s %s\n", indent, dim("|"))
	fmt.Fprintf(self.out, "%s %s %s\n", dim(number), dim("|"), lines[line-1])
	marker := strings.Repeat(" ", max(int(loc.Column)-1, 0)) + level("^")
	fmt.Fprintf(self.out, "%s %s %s\n", indent, dim("|"), marker)
}

// RenderAll renders the set in order and returns how many were errors.
func (self *Renderer) RenderAll(es []Exception) int {
	errored := 0
	for _, e := range es {
		self.Render(e)
		if e.Severity() == SeverityError {
			errored = errored + 1
		}
	}
	return errored
}
