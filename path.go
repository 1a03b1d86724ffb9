package wslpath

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Form tells which spelling a Path was built from.
type Form int

const (
	// FormWindows is the drive-letter spelling, "C:\foo".
	FormWindows Form = iota

	// FormWSL is the mount spelling, "/mnt/c/foo".
	FormWSL
)

func (f Form) String() string {
	if f == FormWSL {
		return "wsl"
	}
	return "windows"
}

// Path is a single file system path on a Windows drive, known
// in up to two equivalent spellings.
//
// Internally it keeps the lowercase drive letter plus the path
// segments below the drive root, so both spellings are just
// renderings of the same value. Each rendering is computed on
// first request and cached, guarded by a sync.Once so that
// concurrent first access from multiple goroutines observes a
// single published string.
type Path struct {
	drive byte
	segs  []string
	form  Form

	winOnce sync.Once
	win     string
	wslOnce sync.Once
	wsl     string
}

// New classifies input as either spelling and builds a Path
// from it. Backslashes count as separators during the
// classification, so mixed-separator Windows paths like
// "C:/foo\bar" are accepted.
//
// Inputs matching neither spelling, which includes UNC paths,
// relative paths and mounts outside /mnt, fail with an
// *UnsupportedPathError.
func New(input string) (*Path, error) {
	normalized := strings.ReplaceAll(input, `\`, "/")
	if drive, rest, ok := splitMountForm(normalized); ok {
		return &Path{
			drive: lowerLetter(drive),
			segs:  splitSegments(rest),
			form:  FormWSL,
		}, nil
	}
	if len(normalized) >= 2 && normalized[1] == ':' &&
		isLetter(normalized[0]) {
		return &Path{
			drive: lowerLetter(normalized[0]),
			segs:  splitSegments(normalized[2:]),
			form:  FormWindows,
		}, nil
	}
	return nil, &UnsupportedPathError{Input: input}
}

// splitMountForm matches "/mnt/<letter>" followed by either a
// separator or the end of the string, returning the drive
// letter and the remainder below the drive root.
func splitMountForm(p string) (byte, string, bool) {
	if !strings.HasPrefix(p, "/mnt/") || len(p) < 6 {
		return 0, "", false
	}
	if !isLetter(p[5]) {
		return 0, "", false
	}
	if len(p) > 6 && p[6] != '/' {
		return 0, "", false
	}
	return p[5], p[6:], true
}

func splitSegments(p string) []string {
	var segs []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func lowerLetter(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func upperLetter(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// Windows renders the drive-letter spelling, with an uppercase
// drive and backslash separators. A path holding no segments
// below the drive root renders as the bare drive root "C:\".
func (p *Path) Windows() string {
	p.winOnce.Do(func() {
		p.win = string(upperLetter(p.drive)) + `:\` +
			strings.Join(p.segs, `\`)
	})
	return p.win
}

// WSL renders the mount spelling, with a lowercase drive and
// slash separators. A path holding no segments below the drive
// root renders as the bare mount point "/mnt/c".
func (p *Path) WSL() string {
	p.wslOnce.Do(func() {
		rendered := "/mnt/" + string(p.drive)
		if len(p.segs) > 0 {
			rendered += "/" + strings.Join(p.segs, "/")
		}
		p.wsl = rendered
	})
	return p.wsl
}

// Join yields a new Path with the segments appended below the
// receiver. Separators of either kind inside a segment split it
// into nested segments. The new Path starts with empty rendering
// caches and the receiver is left untouched.
func (p *Path) Join(segments ...string) *Path {
	segs := make([]string, len(p.segs), len(p.segs)+len(segments))
	copy(segs, p.segs)
	for _, segment := range segments {
		normalized := strings.ReplaceAll(segment, `\`, "/")
		segs = append(segs, splitSegments(normalized)...)
	}
	return &Path{drive: p.drive, segs: segs, form: p.form}
}

// Drive returns the lowercase drive letter.
func (p *Path) Drive() byte {
	return p.drive
}

// Form returns the spelling the Path was built from.
func (p *Path) Form() Form {
	return p.form
}

// String renders the spelling the Path was built from.
func (p *Path) String() string {
	if p.form == FormWSL {
		return p.WSL()
	}
	return p.Windows()
}

// ToWSL converts input, given in either spelling, to the mount
// spelling in a single call.
func ToWSL(input string) (string, error) {
	p, err := New(input)
	if err != nil {
		return "", errors.Wrap(err, "render wsl spelling")
	}
	return p.WSL(), nil
}

// ToWindows converts input, given in either spelling, to the
// drive-letter spelling in a single call.
func ToWindows(input string) (string, error) {
	p, err := New(input)
	if err != nil {
		return "", errors.Wrap(err, "render windows spelling")
	}
	return p.Windows(), nil
}
