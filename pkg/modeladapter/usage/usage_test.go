package usage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAddAndTotal(t *testing.T) {
	var tr Tracker

	tr.Add(TokenCount{InputTokens: 10, OutputTokens: 5})
	tr.Add(TokenCount{InputTokens: 3, OutputTokens: 2})

	assert.Equal(t, TokenCount{InputTokens: 13, OutputTokens: 7}, tr.Total())
	assert.Equal(t, 2, tr.Calls())
	assert.Equal(t, 20, tr.Total().Total())
}

func TestTrackerReset(t *testing.T) {
	var tr Tracker
	tr.Add(TokenCount{InputTokens: 1})

	tr.Reset()

	assert.Equal(t, TokenCount{}, tr.Total())
	assert.Equal(t, 0, tr.Calls())
}

func TestTrackerConcurrent(t *testing.T) {
	var tr Tracker
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(TokenCount{InputTokens: 1, OutputTokens: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Calls())
	assert.Equal(t, 100, tr.Total().Total())
}
