package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Message is one desktop notification.
type Message struct {
	Title string
	Body  string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }

// Exec shells out to notify-send on Linux and osascript on macOS. Other
// platforms are silently skipped.
type Exec struct {
	GOOS string
	Run  func(ctx context.Context, name string, args ...string) error
}

func NewExec() Exec {
	return Exec{GOOS: runtime.GOOS, Run: runCommand}
}

func (e Exec) Send(ctx context.Context, msg Message) error {
	goos := e.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	name, args, ok := commandFor(goos, msg)
	if !ok {
		return nil
	}
	run := e.Run
	if run == nil {
		run = runCommand
	}
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("notify: %s: %w", name, err)
	}
	return nil
}

func commandFor(goos string, msg Message) (string, []string, bool) {
	switch goos {
	case "linux":
		return "notify-send", []string{msg.Title, msg.Body}, true
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(msg.Body), escapeAppleScript(msg.Title))
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
