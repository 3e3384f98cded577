package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mytasks/internal/commands"
	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/service"
	"mytasks/internal/storage"
	"mytasks/internal/task"
	"mytasks/internal/testutil"
	"mytasks/internal/theme"
)

// newService wraps fs in a real Workspace.
func newService(t *testing.T, fs *testutil.FakeStorage) service.Service {
	t.Helper()
	svc, err := service.New(context.Background(), fs)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

// runCommand is a helper to run a command against svc.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

const threeTasks = `[{"title":"A","summary":""},{"title":"B","summary":"bee"},{"title":"C","summary":""}]`

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "mytasks 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestVersionCommand_Verbose(t *testing.T) {
	tests := []struct {
		driver  string
		storage string
	}{
		{"", "storage: file "},
		{config.DriverSQLite, "storage: sqlite "},
		{config.DriverGTasks, `storage: gtasks list "mytasks-storage"`},
	}

	for _, tt := range tests {
		cfg := &config.Config{Dir: t.TempDir()}
		cfg.Storage.Driver = tt.driver
		cfg.Storage.GTasksList = "mytasks-storage"
		cmd := &commands.VersionCmd{}
		cmd.SetVerbose(true)

		var out, errOut bytes.Buffer
		if code := cmd.Run(context.Background(), cfg, nil, nil, &out, &errOut); code != exitcode.Success {
			t.Errorf("%q: expected exit code %d, got %d", tt.driver, exitcode.Success, code)
		}
		if !strings.HasPrefix(out.String(), "mytasks 0.1.0\n") {
			t.Errorf("%q: expected version first, got %q", tt.driver, out.String())
		}
		if !strings.Contains(out.String(), tt.storage) {
			t.Errorf("%q: expected %q in %q", tt.driver, tt.storage, out.String())
		}
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	// Every registered command is documented
	for _, c := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, "mytasks "+c.Name()) {
			t.Errorf("help output should mention %q", c.Name())
		}
	}
}

func TestHelpCommand_ListsAliases(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	for _, want := range []string{"(also: create)", "(also: delete)", "(also: ls)", "--config <dir>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, threeTasks)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, newService(t, fs), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  A\n      No summary was provided for this task\n" +
		"   2  B\n      bee\n" +
		"   3  C\n      No summary was provided for this task\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, newService(t, testutil.NewFakeStorage()), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "You have no tasks\n" {
		t.Errorf("expected 'You have no tasks\\n', got %q", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, newService(t, testutil.NewFakeStorage()), nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestListCommand_CorruptStorage(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, "{not json")

	stdout, _, code := runCommand(t, &commands.ListCmd{}, newService(t, fs), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "You have no tasks\n" {
		t.Errorf("expected empty list fallback, got %q", stdout)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	fs := testutil.NewFakeStorage()
	cmd := &commands.AddCmd{}

	stdout, stderr, code := runCommand(t, cmd, newService(t, fs), []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if v, _ := fs.Value(task.StorageKey); v != `[{"title":"Buy milk","summary":""}]` {
		t.Errorf("unexpected stored value %q", v)
	}
}

func TestAddCommand_WithSummary(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, `[{"title":"A","summary":""}]`)
	cmd := &commands.AddCmd{}
	cmd.SetSummary("Q3 numbers")

	_, _, code := runCommand(t, cmd, newService(t, fs), []string{"Report"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := `[{"title":"A","summary":""},{"title":"Report","summary":"Q3 numbers"}]`
	if v, _ := fs.Value(task.StorageKey); v != expected {
		t.Errorf("expected %q, got %q", expected, v)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.AddCmd{}, newService(t, testutil.NewFakeStorage()), []string{"A"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	for _, args := range [][]string{nil, {"  "}} {
		fs := testutil.NewFakeStorage()
		_, stderr, code := runCommand(t, &commands.AddCmd{}, newService(t, fs), args, false)

		if code != exitcode.UserError {
			t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
		}
		if stderr != "error: title required\n" {
			t.Errorf("expected 'error: title required\\n', got %q", stderr)
		}
		if fs.Sets != 0 {
			t.Errorf("expected no writes, got %d", fs.Sets)
		}
	}
}

func TestAddCommand_StorageFailure(t *testing.T) {
	fs := testutil.NewFakeStorage()
	svc := newService(t, fs)
	fs.SetErr = errors.New("disk full")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"A"}, false)

	if code != exitcode.StorageError {
		t.Errorf("expected exit code %d, got %d", exitcode.StorageError, code)
	}
	if !strings.HasPrefix(stderr, "error: storage error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_Unauthorized(t *testing.T) {
	fs := testutil.NewFakeStorage()
	svc := newService(t, fs)
	fs.SetErr = storage.ErrUnauthorized

	_, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"A"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, threeTasks)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, newService(t, fs), []string{"2"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	expected := `[{"title":"A","summary":""},{"title":"C","summary":""}]`
	if v, _ := fs.Value(task.StorageKey); v != expected {
		t.Errorf("expected %q, got %q", expected, v)
	}
}

func TestRmCommand_OutOfRange(t *testing.T) {
	for _, arg := range []string{"0", "4"} {
		fs := testutil.NewFakeStorage()
		fs.Put(task.StorageKey, threeTasks)

		_, stderr, code := runCommand(t, &commands.RmCmd{}, newService(t, fs), []string{arg}, false)

		if code != exitcode.UserError {
			t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
		}
		expected := "error: task number out of range: " + arg + "\n"
		if stderr != expected {
			t.Errorf("expected %q, got %q", expected, stderr)
		}
		if fs.Sets != 0 {
			t.Errorf("expected no writes, got %d", fs.Sets)
		}
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmCmd{}, newService(t, testutil.NewFakeStorage()), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task number required\n" {
		t.Errorf("expected 'error: task number required\\n', got %q", stderr)
	}
}

// Tests for theme command
func TestThemeCommand(t *testing.T) {
	fs := testutil.NewFakeStorage()
	svc := newService(t, fs)

	tests := []struct {
		args   []string
		stdout string
		stored string
	}{
		{nil, "light\n", ""},
		{[]string{"toggle"}, "dark\n", "dark"},
		{nil, "dark\n", "dark"},
		{[]string{"light"}, "light\n", "light"},
		{[]string{"light"}, "light\n", "light"},
	}

	for _, tt := range tests {
		stdout, stderr, code := runCommand(t, &commands.ThemeCmd{}, svc, tt.args, false)
		if code != exitcode.Success {
			t.Errorf("%v: expected exit code %d, got %d (%s)", tt.args, exitcode.Success, code, stderr)
		}
		if stdout != tt.stdout {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.stdout, stdout)
		}
		if v, _ := fs.Value(theme.StorageKey); v != tt.stored {
			t.Errorf("%v: expected stored %q, got %q", tt.args, tt.stored, v)
		}
	}
}

func TestThemeCommand_Invalid(t *testing.T) {
	fs := testutil.NewFakeStorage()

	_, stderr, code := runCommand(t, &commands.ThemeCmd{}, newService(t, fs), []string{"blue"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid theme: blue\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if fs.Sets != 0 {
		t.Errorf("expected no writes, got %d", fs.Sets)
	}
}

// Tests for export command
func TestExportCommand_Stdout(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, `[{"title":"A","summary":"s"}]`)
	cmd := &commands.ExportCmd{}
	cmd.SetFormat("csv", "")

	stdout, _, code := runCommand(t, cmd, newService(t, fs), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "title,summary\nA,s\n" {
		t.Errorf("unexpected csv %q", stdout)
	}
}

func TestExportCommand_File(t *testing.T) {
	fs := testutil.NewFakeStorage()
	fs.Put(task.StorageKey, threeTasks)
	path := filepath.Join(t.TempDir(), "tasks.pdf")
	cmd := &commands.ExportCmd{}
	cmd.SetFormat("pdf", path)

	stdout, _, code := runCommand(t, cmd, newService(t, fs), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "wrote 3 tasks to "+path+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("expected a PDF file")
	}
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	cmd := &commands.ExportCmd{}
	cmd.SetFormat("xml", "")

	_, stderr, code := runCommand(t, cmd, newService(t, testutil.NewFakeStorage()), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown format: xml\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for registry
func TestRegistry_Aliases(t *testing.T) {
	tests := map[string]string{
		"create": "add",
		"delete": "rm",
		"ls":     "list",
	}
	for alias, name := range tests {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok {
			t.Errorf("alias %q not registered", alias)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("alias %q: expected %q, got %q", alias, name, cmd.Name())
		}
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Register(&commands.AddCmd{})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err.Error() != `command name "add" already used by add` {
		t.Errorf("unexpected error %q", err.Error())
	}
	if n := len(r.All()); n != 1 {
		t.Errorf("expected 1 command, got %d", n)
	}
}
