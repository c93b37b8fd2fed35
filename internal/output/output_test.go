package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return NewWithWriters(stdout, stderr, false), stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	require.NotNil(t, w)
	assert.NotNil(t, w.out)
	assert.NotNil(t, w.err)
	assert.NotNil(t, w.log)
}

func TestWriter_Println(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Println("hello %s", "world")

	assert.Equal(t, "hello world\n", stdout.String())
}

func TestWriter_Errorln(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Errorln("error %d", 42)

	assert.Equal(t, "error 42\n", stderr.String())
	assert.Empty(t, stdout.String())
}

func TestWriter_PrintLog_DefaultLevel(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.PrintLog("an error", SeverityError)
	w.PrintLog("a warning", SeverityWarning)
	w.PrintLog("some info", SeverityInfo)
	w.PrintLog("debug detail", SeverityDebug)

	assert.Equal(t, "an error\na warning\nsome info\n", stdout.String())
}

func TestWriter_PrintLog_Quiet(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.SetQuiet(true)

	w.PrintLog("an error", SeverityError)
	w.PrintLog("a warning", SeverityWarning)
	w.PrintLog("some info", SeverityInfo)

	assert.Equal(t, "an error\na warning\n", stdout.String())
}

func TestWriter_PrintLog_Verbose(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.SetVerbose(true)

	w.PrintLog("debug detail", SeverityDebug)

	line := stdout.String()
	assert.True(t, strings.HasSuffix(line, " debug detail\n"), "got %q", line)
}

func TestWriter_PrintLog_LeadingNewlineKept(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.PrintLog("\nExecuting test \"basic_sanity_tests\"", SeverityInfo)

	assert.Equal(t, "\nExecuting test \"basic_sanity_tests\"\n", stdout.String())
}

func TestWriter_DebugFields(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.SetVerbose(true)

	w.DebugFields("running command", map[string]interface{}{"name": "DobbyTool", "args": "list"})

	assert.Contains(t, stdout.String(), "running command args=list name=DobbyTool")
}

func TestWriter_Formatted(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Infof("Tested %d test groups", 3)
	w.Warnf("skipping %s", "gui_containers")
	w.Errorf("failed: %v", "boom")
	w.Debugf("hidden")

	assert.Equal(t, "Tested 3 test groups\nskipping gui_containers\nfailed: boom\n", stdout.String())
}

func TestWriter_PrintResults(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.PrintResults(3, 5)

	assert.Equal(t, "Successful tests: 3/5\n", stdout.String())
}

func TestWriter_PrintResults_Colored(t *testing.T) {
	stdout := &bytes.Buffer{}
	w := NewWithWriters(stdout, &bytes.Buffer{}, true)

	w.PrintResults(2, 2)

	assert.Contains(t, stdout.String(), "\x1b[")
	assert.Contains(t, stdout.String(), "Successful tests: 2/2")
}

func TestWriter_ErrorPrefix(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.ErrorPrefix("bad flag %q", "--nope")

	assert.Equal(t, "dobbytest: bad flag \"--nope\"\n", stderr.String())
}

func TestWriter_WarningSimple(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.WarningSimple("unknown key %q", "foo")

	assert.Equal(t, "warning: unknown key \"foo\"\n", stderr.String())
}

func TestWriter_HelpCommand_NoColor(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.HelpCommand("groups", "List test groups", 10)

	assert.Equal(t, "  groups      List test groups\n", stdout.String())
}

func TestWriter_ColorPlaceholders(t *testing.T) {
	w := NewWithWriters(&bytes.Buffer{}, &bytes.Buffer{}, true)

	got := w.colorPlaceholders("--config <path>")

	assert.Contains(t, got, "<path>")
	assert.NotEqual(t, "--config <path>", got)
}

func TestWriter_ResultsTable(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.ResultsTable("Results", []GroupRow{
		{Name: "basic_sanity_tests", Passed: 2, Total: 2, Duration: 1500 * time.Millisecond},
		{Name: "gui_containers"},
		{Name: "network_tests", Passed: 1, Total: 3, Error: "timeout"},
	})

	out := stdout.String()
	assert.Contains(t, out, "Basic Sanity Tests")
	assert.Contains(t, out, "Gui Containers")
	assert.Contains(t, out, "✓ pass")
	assert.Contains(t, out, "- skip")
	assert.Contains(t, out, "✗ fail")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "timeout")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Container Manipulations", DisplayName("container_manipulations"))
	assert.Equal(t, "Network Tests", DisplayName("network_tests"))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "debug", SeverityDebug.String())
	assert.Equal(t, "severity(9)", Severity(9).String())
}
