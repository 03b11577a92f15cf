package sources_test

import (
	"sync"
	"testing"

	"github.com/benmeehan/tool-watchdog/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := sources.NewCounter()

	ts, err := c.Timestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)

	assert.Equal(t, uint64(1), c.Touch())
	c.Set(42)
	ts, err = c.Timestamp()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ts)
}

func TestCounter_ConcurrentTouch(t *testing.T) {
	c := sources.NewCounter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Touch()
			}
		}()
	}
	wg.Wait()

	ts, err := c.Timestamp()
	require.NoError(t, err)
	assert.Equal(t, uint64(800), ts)
}

func TestCounter_StopMakesUnavailable(t *testing.T) {
	c := sources.NewCounter()
	require.NoError(t, c.Stop())

	_, err := c.Timestamp()
	assert.ErrorIs(t, err, sources.ErrSourceUnavailable)
}
