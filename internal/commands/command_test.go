package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/new buy milk", TypeNew},
		{"dismiss 0 2", TypeDismiss},
		{"expand 1", TypeExpand},
		{"remind pay rent 2026-11-01 1m", TypeRemind},
		{"FORGET 0", TypeForget},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseRemindSplitsTitleDateAndPeriod(t *testing.T) {
	cmd, err := Parse("remind pay rent 2026-11-01 1m")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got := *cmd.Remind
	if got.Title != "pay rent" || got.ScheduledAt != "2026-11-01" || got.Period != "1m" {
		t.Fatalf("unexpected remind args: %+v", got)
	}

	cmd, err = Parse("remind dentist 2026-11-02")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Remind.Period != "" {
		t.Fatalf("expected no period, got %q", cmd.Remind.Period)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"new",
		"dismiss",
		"expand",
		"expand 1 2",
		"remind 2026-11-01",
		"remind no date here",
		"remind x 2026-11-01 1d extra",
		"forget",
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseEmptyAndUnknown(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input, got %v", in, err)
		}
	}

	_, err := Parse("/unknown do x")
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("dismiss 0 3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Dismiss: func(a DismissArgs) (Result, error) {
			called = true
			if len(a.Indices) != 2 || a.Indices[0] != "0" || a.Indices[1] != "3" {
				t.Fatalf("unexpected indices: %v", a.Indices)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("expand 0")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
