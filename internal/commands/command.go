package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/daycal/internal/model"
)

type Type string

const (
	TypeAll   Type = "all"
	TypeDate  Type = "date"
	TypeLater Type = "later"
	TypeAdd   Type = "add"
	TypeApply Type = "apply"
	TypeQuit  Type = "quit"
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

// DateArgs carries the day for /all and /date. An empty Date clears the
// assignment.
type DateArgs struct {
	Date string
}

type Command struct {
	Type Type
	Raw  string
	Date *DateArgs
}

// Parse reads one import-screen command. The leading slash is optional.
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
	case TypeAll:
		return parseDate(input, TypeAll, args, true)
	case TypeDate:
		return parseDate(input, TypeDate, args, false)
	case TypeLater, TypeAdd, TypeApply, TypeQuit:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	case "q", "exit":
		return Command{Type: TypeQuit, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseDate(raw string, typ Type, args []string, allowEmpty bool) (Command, error) {
	if len(args) == 0 {
		if !allowEmpty {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a date (YYYY-MM-DD)", typ)}
		}
		return Command{Type: typ, Raw: raw, Date: &DateArgs{}}, nil
	}
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes a single date", typ)}
	}
	if _, err := model.ParseDay(args[0]); err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", args[0])}
	}
	return Command{Type: typ, Raw: raw, Date: &DateArgs{Date: args[0]}}, nil
}
