// Package progress reports item counts for long list loads on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter receives progress for a bounded amount of work.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	SetDescription(desc string)
}

// CLIProgress implements Reporter with a terminal progress bar.
type CLIProgress struct {
	out   io.Writer
	bar   *progressbar.ProgressBar
	total int64
}

// NewCLIProgress creates a progress bar reporter writing to out.
func NewCLIProgress(out io.Writer) *CLIProgress {
	return &CLIProgress{out: out}
}

// Start initializes the progress bar with an item total and description.
func (p *CLIProgress) Start(total int64, description string) {
	p.total = total
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to current, growing the total if the server reported more.
func (p *CLIProgress) Update(current int64) {
	if p.bar == nil {
		return
	}
	if current > p.total {
		p.total = current
		p.bar.ChangeMax64(current)
	}
	_ = p.bar.Set64(current)
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// NoOpProgress is a progress reporter that does nothing (for pipes and silent runs).
type NoOpProgress struct{}

func (NoOpProgress) Start(int64, string)   {}
func (NoOpProgress) Update(int64)          {}
func (NoOpProgress) Finish()               {}
func (NoOpProgress) SetDescription(string) {}

// ForFile returns a bar on f when it is a terminal and a no-op otherwise.
func ForFile(f *os.File) Reporter {
	if term.IsTerminal(int(f.Fd())) {
		return NewCLIProgress(f)
	}
	return NoOpProgress{}
}

// Tracker adapts r to the (loaded, total) callback of a full list load.
// The bar starts on the first call, once the total is known.
func Tracker(r Reporter, description string) func(loaded int, total int64) {
	started := false
	return func(loaded int, total int64) {
		if !started {
			r.Start(total, description)
			started = true
		}
		r.Update(int64(loaded))
	}
}
