package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrTaskNumberRequired indicates no task number was provided.
var ErrTaskNumberRequired = errors.New("task number required")

// ParseTaskNumber parses the 1-based task number from args.
//
// Parsing rules:
// 1. No args → error: task number required
// 2. First arg all digits → that number (range is checked by the caller)
// 3. Extra args → error: unexpected argument: <arg>
// 4. Otherwise → error: invalid task number: <arg>
func ParseTaskNumber(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskNumberRequired
	}

	first := args[0]
	if !isAllDigits(first) {
		return 0, fmt.Errorf("invalid task number: %s", first)
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	num, err := strconv.Atoi(first)
	if err != nil {
		// Only overflow gets here
		return 0, fmt.Errorf("invalid task number: %s", first)
	}
	return num, nil
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
