package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeNew     Type = "new"
	TypeDismiss Type = "dismiss"
	TypeExpand  Type = "expand"
	TypeRemind  Type = "remind"
	TypeForget  Type = "forget"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type NewArgs struct {
	Title string
}

type DismissArgs struct {
	Indices []string
}

type ExpandArgs struct {
	Index string
}

type RemindArgs struct {
	Title       string
	ScheduledAt string
	Period      string
}

type ForgetArgs struct {
	Index string
}

type Command struct {
	Type    Type
	Raw     string
	New     *NewArgs
	Dismiss *DismissArgs
	Expand  *ExpandArgs
	Remind  *RemindArgs
	Forget  *ForgetArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeNew:
		return parseNew(input, args)
	case TypeDismiss:
		return parseDismiss(input, args)
	case TypeExpand:
		return parseExpand(input, args)
	case TypeRemind:
		return parseRemind(input, args)
	case TypeForget:
		return parseForget(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseNew(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "new requires a title"}
	}
	return Command{Type: TypeNew, Raw: raw, New: &NewArgs{Title: title}}, nil
}

func parseDismiss(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "dismiss requires at least one index"}
	}
	return Command{Type: TypeDismiss, Raw: raw, Dismiss: &DismissArgs{Indices: args}}, nil
}

func parseExpand(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "expand requires exactly one index"}
	}
	return Command{Type: TypeExpand, Raw: raw, Expand: &ExpandArgs{Index: args[0]}}, nil
}

// parseRemind takes the date as the first token that looks like one, so
// titles may contain spaces: "remind pay rent 2026-11-01 1m".
func parseRemind(raw string, args []string) (Command, error) {
	dateAt := -1
	for i, arg := range args {
		if looksLikeDate(arg) {
			dateAt = i
			break
		}
	}
	if dateAt <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "remind requires a title and a YYYY-MM-DD date"}
	}
	rest := args[dateAt+1:]
	if len(rest) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "remind takes at most one period after the date"}
	}
	out := RemindArgs{
		Title:       strings.Join(args[:dateAt], " "),
		ScheduledAt: args[dateAt],
	}
	if len(rest) == 1 {
		out.Period = rest[0]
	}
	return Command{Type: TypeRemind, Raw: raw, Remind: &out}, nil
}

func parseForget(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "forget requires exactly one reminder index"}
	}
	return Command{Type: TypeForget, Raw: raw, Forget: &ForgetArgs{Index: args[0]}}, nil
}

func looksLikeDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
