package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"todo/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Letter    rune           // 0 if no column letter, 't', 'o' or 'd' otherwise
	Column    service.Status // column named by Letter
	TaskNum   int            // 1-based task number
	HasLetter bool           // true if a column letter was provided
}

func (r TaskRef) String() string {
	if r.HasLetter {
		return fmt.Sprintf("%c%d", r.Letter, r.TaskNum)
	}
	return strconv.Itoa(r.TaskNum)
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrTaskRefInvalid indicates a malformed task reference.
	ErrTaskRefInvalid = errors.New("invalid task reference")

	// ErrTaskOutOfRange indicates a reference past the end of its list.
	ErrTaskOutOfRange = errors.New("task number out of range")
)

var columnLetters = map[rune]service.Status{
	't': service.StatusTodo,
	'o': service.StatusOverdue,
	'd': service.StatusDone,
}

// ParseTaskRef parses a task reference from the front of args and returns
// the remaining args.
//
// Parsing rules:
// 1. If first arg is all digits → position in the flat list
// 2. If first arg is <column><digits> (e.g., t1, o12) → position in that column
// 3. If first arg is a column letter and second arg is all digits → separated reference (t 1)
// 4. If first arg is a column letter with no second arg → error: task reference required
// 5. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, []string, error) {
	if len(args) == 0 {
		return TaskRef{}, nil, ErrTaskRefRequired
	}

	firstArg := args[0]

	// Case 1: All digits → flat list, numeric reference
	if isAllDigits(firstArg) {
		num, err := strconv.Atoi(firstArg)
		if err != nil {
			return TaskRef{}, nil, invalidRef(firstArg)
		}
		return TaskRef{TaskNum: num}, args[1:], nil
	}

	letter := rune(firstArg[0])
	column, ok := columnLetters[letter]
	if !ok {
		return TaskRef{}, nil, invalidRef(firstArg)
	}

	// Case 2: <letter><digits> (e.g., t1, d12)
	if len(firstArg) > 1 {
		if !isAllDigits(firstArg[1:]) {
			return TaskRef{}, nil, invalidRef(firstArg)
		}
		num, err := strconv.Atoi(firstArg[1:])
		if err != nil {
			return TaskRef{}, nil, invalidRef(firstArg)
		}
		return TaskRef{Letter: letter, Column: column, TaskNum: num, HasLetter: true}, args[1:], nil
	}

	// Case 3: single letter, number in the next arg
	if len(args) < 2 {
		// Case 4: Single letter with no second arg
		return TaskRef{}, nil, ErrTaskRefRequired
	}
	if !isAllDigits(args[1]) {
		return TaskRef{}, nil, invalidRef(firstArg)
	}
	num, err := strconv.Atoi(args[1])
	if err != nil {
		return TaskRef{}, nil, invalidRef(args[1])
	}
	return TaskRef{Letter: letter, Column: column, TaskNum: num, HasLetter: true}, args[2:], nil
}

func invalidRef(s string) error {
	return fmt.Errorf("%w: %s", ErrTaskRefInvalid, s)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
