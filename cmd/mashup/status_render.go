package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type checkState int

const (
	stateInfo checkState = iota
	stateOK
	stateWarn
	stateFail
)

const statusLabelWidth = 20

var stateStyles = map[checkState]struct {
	tag    string
	colors text.Colors
}{
	stateInfo: {"info", text.Colors{text.FgHiBlack}},
	stateOK:   {"ok", text.Colors{text.FgGreen}},
	stateWarn: {"warn", text.Colors{text.FgYellow}},
	stateFail: {"fail", text.Colors{text.FgRed, text.Bold}},
}

// statusReport collects the sections printed by `mashup status`. Only the
// state tag is coloured, and only when writing to a terminal.
type statusReport struct {
	colorize bool
	lines    []string
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{colorize: isTerminal(w)}
}

func (r *statusReport) section(title string) {
	title = strings.TrimSpace(title)
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	r.lines = append(r.lines, title, strings.Repeat("-", len(title)))
}

func (r *statusReport) add(label string, state checkState, detail string) {
	r.lines = append(r.lines, formatCheck(label, state, detail, r.colorize))
}

func (r *statusReport) String() string {
	return strings.Join(r.lines, "\n")
}

func formatCheck(label string, state checkState, detail string, colorize bool) string {
	style := stateStyles[state]
	tag := fmt.Sprintf("%-4s", style.tag)
	if colorize {
		tag = style.colors.Sprint(tag)
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label, tag)
	if detail = strings.TrimSpace(detail); detail != "" {
		line += "  " + detail
	}
	return line
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
