package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdown_TicksToZero(t *testing.T) {
	var c Countdown
	gen := c.Start(3)
	assert.True(t, c.Running())

	for want := 2; want >= 0; want-- {
		got, ok := c.Tick(gen)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.False(t, c.Running())

	got, ok := c.Tick(gen)
	assert.False(t, ok)
	assert.Equal(t, 0, got)
}

func TestCountdown_StopIsIdempotent(t *testing.T) {
	var once, twice Countdown
	g1 := once.Start(10)
	g2 := twice.Start(10)
	once.Tick(g1)
	twice.Tick(g2)

	once.Stop()
	twice.Stop()
	twice.Stop()

	assert.Equal(t, once.Remaining(), twice.Remaining())
	assert.Equal(t, once.Running(), twice.Running())
	assert.Equal(t, once.Generation(), twice.Generation())

	_, ok := twice.Tick(g2)
	assert.False(t, ok)
	assert.Equal(t, 9, twice.Remaining())
}

func TestCountdown_RestartIgnoresOldTicks(t *testing.T) {
	var c Countdown
	old := c.Start(5)
	cur := c.Start(5)

	_, ok := c.Tick(old)
	assert.False(t, ok)
	assert.Equal(t, 5, c.Remaining())

	got, ok := c.Tick(cur)
	assert.True(t, ok)
	assert.Equal(t, 4, got)
}

func TestCountdown_StartZero(t *testing.T) {
	var c Countdown
	c.Start(0)
	assert.False(t, c.Running())
	assert.Equal(t, 0, c.Remaining())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	assert.NoError(t, err)
	assert.Equal(t, AssumeNewUser, p)

	p, err = ParsePolicy(" FAIL ")
	assert.NoError(t, err)
	assert.Equal(t, FailClosed, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
