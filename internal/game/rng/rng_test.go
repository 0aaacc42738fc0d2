package rng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/toseph-here/kope-quest/internal/game/rng"
)

// fixedSrc returns preset values, enabling deterministic tests.
type fixedSrc struct {
	n int
	f float64
}

func (s fixedSrc) Intn(n int) int {
	if s.n >= n {
		return n - 1
	}
	return s.n
}

func (s fixedSrc) Float64() float64 { return s.f }

func TestUniform_Bounds(t *testing.T) {
	assert.Equal(t, 0.8, rng.Uniform(fixedSrc{f: 0.0}, 0.8, 1.2))
	assert.InDelta(t, 1.0, rng.Uniform(fixedSrc{f: 0.5}, 0.8, 1.2), 1e-9)
	assert.InDelta(t, 1.2, rng.Uniform(fixedSrc{f: 0.999999}, 0.8, 1.2), 1e-3)
}

func TestUniform_Property_WithinRange(t *testing.T) {
	src := rng.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.Float64Range(-100, 100).Draw(rt, "lo")
		span := rapid.Float64Range(0, 50).Draw(rt, "span")
		v := rng.Uniform(src, lo, lo+span)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, lo+span)
	})
}

func TestChance_Extremes(t *testing.T) {
	src := rng.NewCryptoSource()
	assert.False(t, rng.Chance(src, 0))
	assert.False(t, rng.Chance(src, -1))
	assert.True(t, rng.Chance(src, 1))
	assert.True(t, rng.Chance(src, 2))
}

func TestChance_Threshold(t *testing.T) {
	assert.True(t, rng.Chance(fixedSrc{f: 0.09}, 0.10))
	assert.False(t, rng.Chance(fixedSrc{f: 0.10}, 0.10))
}

func TestPick(t *testing.T) {
	items := []string{"a", "b", "c"}
	assert.Equal(t, "b", rng.Pick(fixedSrc{n: 1}, items))
	assert.Panics(t, func() { rng.Pick(fixedSrc{}, []string{}) })
}

func TestIntBetween(t *testing.T) {
	assert.Equal(t, 5, rng.IntBetween(fixedSrc{n: 0}, 5, 9))
	assert.Equal(t, 9, rng.IntBetween(fixedSrc{n: 4}, 5, 9))
	assert.Equal(t, 3, rng.IntBetween(fixedSrc{n: 0}, 3, 3))
}

func TestCryptoSource_Intn_Property_InRange(t *testing.T) {
	src := rng.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		v := src.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestCryptoSource_Intn_PanicsOnNonPositive(t *testing.T) {
	src := rng.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestCryptoSource_Float64_InRange(t *testing.T) {
	src := rng.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestLoggedSource_DelegatesAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := rng.NewLoggedSource(fixedSrc{n: 2, f: 0.25}, zap.New(core))

	assert.Equal(t, 2, src.Intn(4))
	assert.Equal(t, 0.25, src.Float64())

	entries := logs.FilterMessage("rng draw").All()
	assert.Len(t, entries, 2)
}
