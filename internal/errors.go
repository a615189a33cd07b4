package internal

import "fmt"

// Errorf wraps fmt.Errorf so every error crossing a package boundary in this
// module carries a call-site description and keeps %w for errors.Is/As.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
