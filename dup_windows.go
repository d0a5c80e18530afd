//go:build windows

package reproc

import (
	"os"

	"golang.org/x/sys/windows"
)

// dupFile mirrors dup_unix.go's contract on Windows via DuplicateHandle.
func dupFile(f *os.File) (*os.File, error) {
	proc := windows.CurrentProcess()
	var dup windows.Handle
	err := windows.DuplicateHandle(proc, windows.Handle(f.Fd()), proc, &dup, 0, true, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(dup), f.Name()), nil
}
