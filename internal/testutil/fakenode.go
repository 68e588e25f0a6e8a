// Package testutil provides a stand-in Node.js runtime and script fixtures
// for tests that launch children.
//
// Test binaries re-execute themselves as the runtime: a package's TestMain
// calls RunFakeNode before m.Run, and Config points the launcher at
// os.Args[0] with FakeNodeArg as the first runtime argument. The fake runtime
// binds the inspector port, prints Node's inspector banner on stderr, and then
// emulates the fixture script named by its first positional argument.
package testutil

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ctagard/inspect/internal/config"
)

// FakeNodeArg marks a re-executed test binary as the fake runtime.
const FakeNodeArg = "fake-node"

// ExitInspectorFailed is the status the fake runtime exits with when it
// cannot bind the inspector port.
const ExitInspectorFailed = 12

// RunFakeNode runs the fake runtime and exits if this process was started
// as one. Otherwise it returns immediately.
func RunFakeNode() {
	if len(os.Args) < 2 || os.Args[1] != FakeNodeArg {
		return
	}
	os.Exit(fakeNode(os.Args[2:]))
}

func fakeNode(args []string) int {
	var inspect string
	var script string
	var scriptArgs []string
	for i, arg := range args {
		if strings.HasPrefix(arg, "--inspect") {
			if _, value, ok := strings.Cut(arg, "="); ok {
				inspect = value
			}
			continue
		}
		script = arg
		scriptArgs = args[i+1:]
		break
	}

	if inspect != "" {
		listener, err := net.Listen("tcp", inspect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Starting inspector on %s failed: address already in use\n", inspect)
			return ExitInspectorFailed
		}
		defer listener.Close()

		// Node prints both lines in a single write
		fmt.Fprintf(os.Stderr, "Debugger listening on ws://%s/%s\nFor help, see: https://nodejs.org/en/docs/inspector\n",
			inspect, uuid.New().String())
	}

	switch filepath.Base(script) {
	case "success":
		if len(scriptArgs) > 0 {
			fmt.Fprint(os.Stdout, scriptArgs[len(scriptArgs)-1])
		} else {
			fmt.Fprint(os.Stdout, "success")
		}
		return 0
	case "error":
		fmt.Fprint(os.Stderr, "error\n")
		return 1
	case "sleep":
		time.Sleep(time.Minute)
		return 0
	case "stderr-echo":
		for _, arg := range scriptArgs {
			fmt.Fprintln(os.Stderr, arg)
		}
		return 0
	case "exit-code":
		code := 0
		if len(scriptArgs) > 0 {
			code, _ = strconv.Atoi(scriptArgs[0])
		}
		return code
	default:
		fmt.Fprintf(os.Stderr, "fake-node: unknown fixture %q\n", script)
		return 2
	}
}

// FixturesDir returns the absolute path of the fixture scripts.
func FixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "fixtures")
}

// Fixture returns the absolute path of the named fixture script.
func Fixture(name string) string {
	return filepath.Join(FixturesDir(), name)
}

// Config returns a launcher configuration that runs the fake runtime, finds
// bare fixture names, and starts probing at a port that was free when Config
// was called.
func Config(t testing.TB) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Runtime = os.Args[0]
	cfg.RuntimeArgs = []string{FakeNodeArg}
	cfg.SearchPath = []string{FixturesDir()}
	cfg.StartPort = FreePort(t)
	return cfg
}

// FreePort returns a port on 127.0.0.1 that was unbound when it was probed.
func FreePort(t testing.TB) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to probe for a free port: %v", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

// HoldPort binds port on 127.0.0.1 until the test ends.
func HoldPort(t testing.TB, port int) {
	t.Helper()

	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		t.Fatalf("failed to hold port %d: %v", port, err)
	}
	t.Cleanup(func() { _ = listener.Close() })
}

// Logger returns a logger that writes through t.Log. It must not be used
// after the test returns.
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(logWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type logWriter struct {
	t testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
