//go:build unix

package reproc

import (
	"os"

	"golang.org/x/sys/unix"
)

// dupFile duplicates f's underlying descriptor into a fresh *os.File,
// used to give a child slot its own close-independent descriptor: onto
// the stdout pipe's child end when RedirectParent(stdout) merges the two
// streams, and onto the parent's own standard stream for RedirectInherit
// and RedirectParent.
func dupFile(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), f.Name()), nil
}
