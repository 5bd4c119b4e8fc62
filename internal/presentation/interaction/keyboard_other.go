//go:build !linux && !darwin

package interaction

import (
	"golang.org/x/term"
)

// enableRawMode falls back to x/term where termios ioctls are not available
func enableRawMode(fd int) (func() error, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error {
		return term.Restore(fd, oldState)
	}, nil
}
