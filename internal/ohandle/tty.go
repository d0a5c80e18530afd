package ohandle

import "github.com/mattn/go-isatty"

// IsTTY reports whether h refers to a terminal device. Generalized from
// executable/utils.go's isTTY: the PTY redirect mode's read path uses
// this to fold the kernel's EIO-on-last-reader-gone quirk into a plain
// EOF instead of a platform error.
func IsTTY(h Handle) bool {
	if !h.Valid() {
		return false
	}
	return isatty.IsTerminal(h.Fd())
}
