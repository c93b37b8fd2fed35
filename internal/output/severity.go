package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Severity is the level attached to a test log message.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityDebug
)

var severityNames = map[Severity]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
	SeverityDebug:   "debug",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

func (s Severity) level() logrus.Level {
	switch s {
	case SeverityError:
		return logrus.ErrorLevel
	case SeverityWarning:
		return logrus.WarnLevel
	case SeverityInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

func (s Severity) attrs() []color.Attribute {
	switch s {
	case SeverityError:
		return []color.Attribute{color.FgRed}
	case SeverityWarning:
		return []color.Attribute{color.FgYellow}
	case SeverityDebug:
		return []color.Attribute{color.Faint}
	default:
		return nil
	}
}

func severityFromLevel(l logrus.Level) Severity {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return SeverityError
	case logrus.WarnLevel:
		return SeverityWarning
	case logrus.InfoLevel:
		return SeverityInfo
	default:
		return SeverityDebug
	}
}

// severityFormatter renders the bare message colored by severity. Verbose
// writers prefix each line with a timestamp.
type severityFormatter struct {
	w *Writer
}

func (f *severityFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	msg := e.Message

	// Leading newlines separate blocks; keep them outside the timestamp.
	trimmed := strings.TrimLeft(msg, "\n")
	b.WriteString(msg[:len(msg)-len(trimmed)])

	if f.w.verbose {
		b.WriteString(f.w.paint(e.Time.Format("15:04:05.000"), color.Faint))
		b.WriteByte(' ')
	}
	b.WriteString(f.w.paint(trimmed, severityFromLevel(e.Level).attrs()...))
	for _, key := range sortedKeys(e.Data) {
		fmt.Fprintf(&b, " %s=%v", f.w.paint(key, color.Faint), e.Data[key])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
