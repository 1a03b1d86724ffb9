// Package wslpath converts between the two spellings of a
// path on a Windows drive under WSL: the drive-letter form
// like "C:\foo\test.txt" and the mount form like
// "/mnt/c/foo/test.txt".
//
// A Path is built from either spelling and renders the other
// one lazily on first request, keeping both renderings cached
// afterwards. Joining segments yields a new independent Path
// which supports both spellings again.
//
// The package performs pure string computation and never
// touches the file system, so it is usable on any platform,
// not just inside a WSL distribution.
package wslpath
