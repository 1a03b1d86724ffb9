package wslpath

import "fmt"

// UnsupportedPathError reports an input that is neither a
// drive-letter path nor a /mnt mount path. It carries the
// offending input for diagnostics.
type UnsupportedPathError struct {
	Input string
}

func (e *UnsupportedPathError) Error() string {
	return fmt.Sprintf(
		"unsupported path %q: neither a drive-letter nor a /mnt path",
		e.Input,
	)
}
