package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glorpus-work/tikgrab/pkg/download"
)

func TestDisplayImplementsProgress(t *testing.T) {
	var _ download.Progress = NewDisplay(&bytes.Buffer{})
}

func TestDisplayCreatesOneBarPerDest(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf)

	d.Update("/tmp/a.mp4", 100, 1000)
	d.Update("/tmp/a.mp4", 200, 1000)
	d.Update("/tmp/b.jpg", 50, 500)

	d.mu.Lock()
	assert.Len(t, d.bars, 2)
	d.mu.Unlock()

	d.Done("/tmp/a.mp4")
	d.mu.Lock()
	assert.Len(t, d.bars, 1)
	d.mu.Unlock()
}

func TestDisplayUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf)

	// total 0 means the server sent no content length
	d.Update("/tmp/stream.bin", 4096, 0)
	d.Update("/tmp/stream.bin", 8192, 0)

	d.mu.Lock()
	assert.Len(t, d.bars, 1)
	d.mu.Unlock()
}

func TestDisplayDoneUnknownDest(t *testing.T) {
	d := NewDisplay(&bytes.Buffer{})
	d.Done("/never/seen")
}

func TestDisplayConcurrentUpdates(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			dest := string(rune('a'+n)) + ".mp4"
			for b := int64(1); b <= 100; b++ {
				d.Update(dest, b*100, 10000)
			}
		}(i)
	}
	wg.Wait()

	d.Close()
	d.mu.Lock()
	assert.Empty(t, d.bars)
	d.mu.Unlock()
}
