package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

// statusStyle is the bracketed tag and SGR colour for one kind.
type statusStyle struct {
	tag string
	sgr string
}

var statusStyles = map[statusKind]statusStyle{
	statusInfo:  {tag: "INFO", sgr: "34"},
	statusOK:    {tag: "OK", sgr: "32"},
	statusWarn:  {tag: "WARN", sgr: "33"},
	statusError: {tag: "ERROR", sgr: "31"},
}

const (
	labelColumn = 16
	lineIndent  = "  "
	headerSGR   = "34"
)

func styleFor(kind statusKind) statusStyle {
	if style, ok := statusStyles[kind]; ok {
		return style
	}
	return statusStyles[statusInfo]
}

// paint wraps s in an SGR sequence when colour is on.
func paint(s, sgr string, on bool) string {
	if !on {
		return s
	}
	return "\x1b[" + sgr + "m" + s + "\x1b[0m"
}

// renderStatusLine formats "  Label:   [TAG] message" for `qween status`.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := styleFor(kind)
	var b strings.Builder
	fmt.Fprintf(&b, "%s%-*s [%s]", lineIndent, labelColumn, label+":", style.tag)
	if message != "" {
		b.WriteByte(' ')
		b.WriteString(message)
	}
	return paint(b.String(), style.sgr, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, headerSGR, colorize),
		paint(strings.Repeat("-", len(heading)), headerSGR, colorize),
	}
}

// shouldColorize is true for terminals unless NO_COLOR is set.
func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
