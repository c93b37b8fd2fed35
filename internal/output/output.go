// Package output provides the console writer shared by the CLI, the runner
// and the test groups.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Writer handles CLI output formatting.
//
// Leveled test logging goes through PrintLog, which is backed by a logrus
// logger writing to the same stdout stream as the rest of the output.
type Writer struct {
	out     io.Writer
	err     io.Writer
	color   bool
	quiet   bool
	verbose bool
	log     *logrus.Logger
}

// New creates a new Writer with default settings.
func New() *Writer {
	return NewWithWriters(os.Stdout, os.Stderr, isTerminal())
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, colored bool) *Writer {
	w := &Writer{
		out:   out,
		err:   err,
		color: colored,
		log:   logrus.New(),
	}
	w.log.SetOutput(out)
	w.log.SetFormatter(&severityFormatter{w: w})
	w.applyLevel()
	return w
}

// SetQuiet enables or disables quiet mode. Quiet mode shows warnings and
// errors only.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
	w.applyLevel()
}

// SetVerbose enables or disables debug output.
func (w *Writer) SetVerbose(verbose bool) {
	w.verbose = verbose
	w.applyLevel()
}

// SetColor forces colored output on or off.
func (w *Writer) SetColor(enabled bool) {
	w.color = enabled
}

func (w *Writer) applyLevel() {
	switch {
	case w.quiet:
		w.log.SetLevel(SeverityWarning.level())
	case w.verbose:
		w.log.SetLevel(SeverityDebug.level())
	default:
		w.log.SetLevel(SeverityInfo.level())
	}
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// PrintLog writes a test log message if the severity passes the current
// verbosity.
func (w *Writer) PrintLog(message string, severity Severity) {
	w.log.Log(severity.level(), message)
}

// Debugf logs a formatted message at debug severity.
func (w *Writer) Debugf(format string, args ...interface{}) {
	w.PrintLog(fmt.Sprintf(format, args...), SeverityDebug)
}

// Infof logs a formatted message at info severity.
func (w *Writer) Infof(format string, args ...interface{}) {
	w.PrintLog(fmt.Sprintf(format, args...), SeverityInfo)
}

// Warnf logs a formatted message at warning severity.
func (w *Writer) Warnf(format string, args ...interface{}) {
	w.PrintLog(fmt.Sprintf(format, args...), SeverityWarning)
}

// Errorf logs a formatted message at error severity.
func (w *Writer) Errorf(format string, args ...interface{}) {
	w.PrintLog(fmt.Sprintf(format, args...), SeverityError)
}

// PrintResults prints the final success/total line of a run.
func (w *Writer) PrintResults(success, total int) {
	msg := fmt.Sprintf("Successful tests: %d/%d", success, total)
	if success == total {
		w.Println("%s", w.paint(msg, color.FgGreen, color.Bold))
	} else {
		w.Println("%s", w.paint(msg, color.FgRed, color.Bold))
	}
}

// paint colors s when color output is enabled.
func (w *Writer) paint(s string, attrs ...color.Attribute) string {
	if !w.color || len(attrs) == 0 {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s", w.paint("warning: "+fmt.Sprintf(format, args...), color.FgYellow))
}

// ErrorPrefix prints an error message with the dobbytest prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Errorln("%s %s", w.paint("dobbytest:", color.FgRed), msg)
}

// WarningSimple prints a warning message with a colored prefix only.
func (w *Writer) WarningSimple(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Errorln("%s %s", w.paint("warning:", color.FgYellow), msg)
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	w.Println("  %s %s", w.paint(label+":", color.Faint), value)
}

// ValidationSuccess prints a validation success message.
func (w *Writer) ValidationSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s %s", w.paint("✓", color.FgGreen), msg)
	} else {
		w.Println("%s", msg)
	}
}

// GroupInfo prints a numbered test group line.
func (w *Writer) GroupInfo(index int, name, title string) {
	w.Println("%2d. %s (%s)", index, w.paint(name, color.FgCyan, color.Bold), title)
}

// GroupDetail prints an indented group detail.
func (w *Writer) GroupDetail(label, value string) {
	w.Println("    %s %s", w.paint(label+":", color.Faint), value)
}

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.paint(title, color.FgCyan, color.Bold))
}

// HelpSection formats a section header (e.g., "Commands:").
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Println("%s", w.paint(title, color.FgYellow, color.Bold))
}

// HelpCommand formats a command with its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	if !w.color {
		w.Println("  %-*s  %s", width, name, description)
		return
	}
	padding := width - len(name)
	if padding < 0 {
		padding = 0
	}
	w.Println("  %s%s  %s",
		w.colorPlaceholders(name, color.FgCyan, color.Bold),
		strings.Repeat(" ", padding),
		w.paint(description, color.Faint))
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	if !w.color {
		w.Println("  %-*s  %s", width, name, description)
		return
	}
	padding := width - len(name)
	if padding < 0 {
		padding = 0
	}
	w.Println("  %s%s  %s",
		w.colorPlaceholders(name, color.FgYellow),
		strings.Repeat(" ", padding),
		w.paint(description, color.Faint))
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.paint(command, color.FgCyan))
	if description != "" {
		w.Println("      %s", w.paint(description, color.Faint))
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	w.Println("  %s", w.colorPlaceholders(usage))
}

// HelpEnvVar formats an environment variable.
func (w *Writer) HelpEnvVar(name, description string, width int) {
	if !w.color {
		w.Println("  %-*s  %s", width, name, description)
		return
	}
	padding := width - len(name)
	if padding < 0 {
		padding = 0
	}
	w.Println("  %s%s  %s", w.paint(name, color.FgYellow), strings.Repeat(" ", padding), w.paint(description, color.Faint))
}

// colorPlaceholders highlights <placeholder> patterns in text and paints the
// rest with base.
func (w *Writer) colorPlaceholders(text string, base ...color.Attribute) string {
	if !w.color {
		return text
	}
	var result strings.Builder
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			result.WriteString(w.paint(plain.String(), base...))
			plain.Reset()
		}
	}
	i := 0
	for i < len(text) {
		if text[i] == '<' {
			if end := strings.Index(text[i:], ">"); end != -1 {
				flush()
				result.WriteString(w.paint(text[i:i+end+1], color.FgGreen))
				i += end + 1
				continue
			}
		}
		plain.WriteByte(text[i])
		i++
	}
	flush()
	return result.String()
}

// isTerminal returns true if stdout is a terminal and NO_COLOR is unset.
func isTerminal() bool {
	if color.NoColor {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DebugFields logs msg at debug severity with key=value pairs appended.
func (w *Writer) DebugFields(msg string, fields map[string]interface{}) {
	w.log.WithFields(logrus.Fields(fields)).Debug(msg)
}
