// Package report renders classification reports and delivers them to a sink.
//
// [Formatter] turns a [deps.Report] into text without side effects. A
// [Reporter] decides where that text goes: [NewConsole] writes coloured
// output to a terminal, [Func] hands plain text to any callback such as a
// logger.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/matzehuels/outdated/pkg/deps"
)

// Reporter receives the classification report of one manifest.
type Reporter interface {
	Report(path string, r deps.Report) error
}

// Console writes formatted reports to a writer.
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	formatter Formatter
}

// NewConsole returns a Reporter writing coloured reports to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, formatter: Formatter{Styles: DefaultStyles()}}
}

// NewPlainConsole returns a Reporter writing uncoloured reports to w.
func NewPlainConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Report implements Reporter.
func (c *Console) Report(path string, r deps.Report) error {
	text := c.formatter.Format(path, r)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, text)
	return err
}

// Func adapts a callback receiving plain report text into a Reporter.
type Func func(text string) error

// Report implements Reporter.
func (fn Func) Report(path string, r deps.Report) error {
	return fn(Formatter{}.Format(path, r))
}
