package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	New     func(NewArgs) (Result, error)
	Dismiss func(DismissArgs) (Result, error)
	Expand  func(ExpandArgs) (Result, error)
	Remind  func(RemindArgs) (Result, error)
	Forget  func(ForgetArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeNew:
		if handlers.New == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "new handler not configured"}
		}
		return handlers.New(*cmd.New)
	case TypeDismiss:
		if handlers.Dismiss == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "dismiss handler not configured"}
		}
		return handlers.Dismiss(*cmd.Dismiss)
	case TypeExpand:
		if handlers.Expand == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "expand handler not configured"}
		}
		return handlers.Expand(*cmd.Expand)
	case TypeRemind:
		if handlers.Remind == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "remind handler not configured"}
		}
		return handlers.Remind(*cmd.Remind)
	case TypeForget:
		if handlers.Forget == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "forget handler not configured"}
		}
		return handlers.Forget(*cmd.Forget)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
