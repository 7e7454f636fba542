// Package progress renders terminal progress bars for in-flight downloads.
package progress

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Display renders one progress bar per destination file. It implements the
// download progress interface and is safe for concurrent use from multiple
// transfer goroutines.
type Display struct {
	mu   sync.Mutex
	out  io.Writer
	bars map[string]*progressbar.ProgressBar
}

// NewDisplay creates a Display writing to out.
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out:  out,
		bars: make(map[string]*progressbar.ProgressBar),
	}
}

// Update advances the bar for dest to the given byte count, creating the bar
// on first sight. A zero total renders a spinner-style bar without percentage.
func (d *Display) Update(dest string, downloaded, total int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bar, ok := d.bars[dest]
	if !ok {
		bar = d.newBar(dest, total)
		d.bars[dest] = bar
	}
	_ = bar.Set64(downloaded)
}

// Done finishes and drops the bar for dest. Calling it for an unknown dest is
// a no-op.
func (d *Display) Done(dest string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if bar, ok := d.bars[dest]; ok {
		_ = bar.Finish()
		delete(d.bars, dest)
	}
}

// Close finishes all remaining bars.
func (d *Display) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for dest, bar := range d.bars {
		_ = bar.Finish()
		delete(d.bars, dest)
	}
}

func (d *Display) newBar(dest string, total int64) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(d.out),
		progressbar.OptionSetDescription(filepath.Base(dest)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}
