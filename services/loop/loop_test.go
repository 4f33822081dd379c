package loop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoIsExclusive(t *testing.T) {
	l := New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Do(func() {
				v := counter
				counter = v + 1
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestDoReleasesOnPanic(t *testing.T) {
	l := New()
	assert.Panics(t, func() {
		l.Do(func() { panic("boom") })
	})
	ran := false
	l.Do(func() { ran = true })
	assert.True(t, ran)
}
