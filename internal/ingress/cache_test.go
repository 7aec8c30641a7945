package ingress

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

func TestCacheHaveAnyCommandFalseUntilFirstSet(t *testing.T) {
	c := NewCache()
	require.False(t, c.HaveAnyCommand())
	c.SetTwist(TwistStamped{Stamp: time.Now()})
	require.True(t, c.HaveAnyCommand())
}

func TestCacheLatestTwistReportsWhetherEverReceived(t *testing.T) {
	c := NewCache()
	_, ok := c.LatestTwist()
	require.False(t, ok)

	want := TwistStamped{Linear: r3.Vector{X: 1}, Stamp: time.Now()}
	c.SetTwist(want)
	got, ok := c.LatestTwist()
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestCacheLatestFrameNamesReturnsMostRecent(t *testing.T) {
	c := NewCache()
	c.SetFrameNames("planning", "command")
	p, cmd := c.LatestFrameNames()
	require.Equal(t, "planning", p)
	require.Equal(t, "command", cmd)
}

func TestCollisionScaleDefaultsToOne(t *testing.T) {
	s := NewCollisionScale()
	require.Equal(t, 1.0, s.Scale())
	s.Set(0.25)
	require.Equal(t, 0.25, s.Scale())
}

func TestTwistIsZero(t *testing.T) {
	require.True(t, TwistStamped{}.IsZero())
	require.False(t, TwistStamped{Linear: r3.Vector{Z: 0.1}}.IsZero())
}

func TestJointJogIsZero(t *testing.T) {
	require.True(t, JointJog{Velocities: []float64{0, 0}}.IsZero())
	require.False(t, JointJog{Velocities: []float64{0, 0.01}}.IsZero())
}
