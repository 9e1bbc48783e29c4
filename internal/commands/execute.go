package commands

import "fmt"

type Result struct {
	Message string
	// Done asks the caller to leave the import screen.
	Done bool
}

type Handlers struct {
	All   func(DateArgs) (Result, error)
	Date  func(DateArgs) (Result, error)
	Later func() (Result, error)
	Add   func() (Result, error)
	Apply func() (Result, error)
	Quit  func() (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAll:
		if handlers.All == nil {
			return Result{}, missing("all")
		}
		return handlers.All(*cmd.Date)
	case TypeDate:
		if handlers.Date == nil {
			return Result{}, missing("date")
		}
		return handlers.Date(*cmd.Date)
	case TypeLater:
		if handlers.Later == nil {
			return Result{}, missing("later")
		}
		return handlers.Later()
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing("add")
		}
		return handlers.Add()
	case TypeApply:
		if handlers.Apply == nil {
			return Result{}, missing("apply")
		}
		return handlers.Apply()
	case TypeQuit:
		if handlers.Quit == nil {
			return Result{Done: true}, nil
		}
		return handlers.Quit()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
