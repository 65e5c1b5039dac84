// Package dom defines the document query capability the extraction pipeline
// runs against. A selector that matches nothing is an empty selection, never
// an error, so callers branch on Len.
package dom

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoElement is returned when reading from or clicking an empty selection.
var ErrNoElement = errors.New("dom: no element")

type Finder interface {
	Find(ctx context.Context, selector string) (Selection, error)
}

// Selection is an ordered set of elements in document order.
type Selection interface {
	Finder
	Len() int
	// At returns the i-th element, or an empty selection when out of range.
	At(i int) Selection
	// Text returns the rendered inner text of the first element.
	Text(ctx context.Context) (string, error)
	// Attr returns an attribute of the first element.
	Attr(ctx context.Context, name string) (string, bool, error)
	Click(ctx context.Context) error
	// HasText keeps the elements whose inner text contains any of substrs.
	HasText(ctx context.Context, substrs ...string) (Selection, error)
}

type Page interface {
	Finder
	URL() string
	Navigate(ctx context.Context, url string) error
	// Wait blocks for a fixed duration or until ctx is done.
	Wait(ctx context.Context, d time.Duration) error
	// WaitFor polls until selector matches a visible element or timeout expires.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
}

// Session is one browser with one browsing context. Close releases both.
type Session interface {
	Page
	Close() error
}

type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// First returns the first element matched by selector and whether there was one.
func First(ctx context.Context, f Finder, selector string) (Selection, bool, error) {
	sel, err := f.Find(ctx, selector)
	if err != nil {
		return nil, false, err
	}
	if sel.Len() == 0 {
		return sel, false, nil
	}
	return sel.At(0), true, nil
}

// FirstText returns the trimmed text of the first match. ok is false when
// nothing matched.
func FirstText(ctx context.Context, f Finder, selector string) (string, bool, error) {
	sel, ok, err := First(ctx, f, selector)
	if err != nil || !ok {
		return "", false, err
	}
	text, err := sel.Text(ctx)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(text), true, nil
}

// FirstAttr returns an attribute of the first match.
func FirstAttr(ctx context.Context, f Finder, selector, name string) (string, bool, error) {
	sel, ok, err := First(ctx, f, selector)
	if err != nil || !ok {
		return "", false, err
	}
	return sel.Attr(ctx, name)
}

// Lines splits rendered text into trimmed lines. Blank lines are kept so
// positional readers see the same layout as the page.
func Lines(text string) []string {
	parts := strings.Split(strings.TrimSpace(text), "\n")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
