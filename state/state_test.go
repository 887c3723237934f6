package state

import (
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
)

func TestCellLoadStore(t *testing.T) {
	c := NewCell("global_y", 123)
	assert.Equal(t, "global_y", c.Name())
	assert.Equal(t, 123, c.Load())

	c.Store(7)
	assert.Equal(t, 7, c.Load())

	assert.Equal(t, 7, c.Swap(9))
	assert.Equal(t, 9, c.Load())

	assert.Equal(t, 18, c.Update(func(v int) int { return v * 2 }))
	assert.Equal(t, 18, c.Load())
	assert.Equal(t, "global_y=18", c.String())
}

func TestCellConcurrentUpdate(t *testing.T) {
	c := NewCell("counter", 0)

	var wg conc.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Go(func() {
			for j := 0; j < 100; j++ {
				c.Update(func(v int) int { return v + 1 })
				_ = c.Load()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 6400, c.Load())
}
