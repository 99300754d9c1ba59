package notify

import (
	"context"
	"errors"
	"testing"
)

func TestCommandForPlatforms(t *testing.T) {
	msg := Message{Title: "tore", Body: `say "hi"`}

	name, args, ok := commandFor("linux", msg)
	if !ok || name != "notify-send" || len(args) != 2 || args[0] != "tore" || args[1] != msg.Body {
		t.Fatalf("unexpected linux command: %s %v %v", name, args, ok)
	}

	name, args, ok = commandFor("darwin", msg)
	if !ok || name != "osascript" || len(args) != 2 {
		t.Fatalf("unexpected darwin command: %s %v %v", name, args, ok)
	}
	want := `display notification "say \"hi\"" with title "tore"`
	if args[1] != want {
		t.Fatalf("script = %q, want %q", args[1], want)
	}

	if _, _, ok := commandFor("plan9", msg); ok {
		t.Fatal("expected unsupported platform to be skipped")
	}
}

func TestExecSendUsesRunner(t *testing.T) {
	var gotName string
	var gotArgs []string
	n := Exec{GOOS: "linux", Run: func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}}
	if err := n.Send(context.Background(), Message{Title: "a", Body: "b"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotName != "notify-send" || len(gotArgs) != 2 {
		t.Fatalf("runner not called as expected: %s %v", gotName, gotArgs)
	}
}

func TestExecSendWrapsRunnerError(t *testing.T) {
	boom := errors.New("boom")
	n := Exec{GOOS: "linux", Run: func(context.Context, string, ...string) error { return boom }}
	err := n.Send(context.Background(), Message{Title: "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped runner error, got %v", err)
	}
}

func TestExecSendSkipsUnsupportedPlatform(t *testing.T) {
	called := false
	n := Exec{GOOS: "windows", Run: func(context.Context, string, ...string) error {
		called = true
		return nil
	}}
	if err := n.Send(context.Background(), Message{Title: "a"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if called {
		t.Fatal("runner called on unsupported platform")
	}
}
