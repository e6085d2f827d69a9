package collision

import "reflect"

// SlopeSampler answers terrain slope (rise over run) at a planar position.
type SlopeSampler interface {
	Sample(x, y float64) float64
}

// SlopeFunc adapts a plain function to SlopeSampler.
type SlopeFunc func(x, y float64) float64

// Sample calls f(x, y).
func (f SlopeFunc) Sample(x, y float64) float64 { return f(x, y) }

// ConstantSlope reports the same slope everywhere.
type ConstantSlope float64

// Sample returns c.
func (c ConstantSlope) Sample(_, _ float64) float64 { return float64(c) }

// slopeGate is swapped as a unit so readers never see a sampler paired with
// another call's threshold.
type slopeGate struct {
	sampler   SlopeSampler
	threshold float64
}

// blocks reports whether the slope at (x, y) rules the point out.
// Non-finite samples block, as does a sampler that panics.
func (g *slopeGate) blocks(x, y float64) (blocked bool) {
	defer func() {
		if recover() != nil {
			blocked = true
		}
	}()
	s := g.sampler.Sample(x, y)
	return !finite(s) || s > g.threshold
}

// isNilSampler reports whether s is nil, including a typed nil pointer,
// func, map or other nilable value stored in the interface.
func isNilSampler(s SlopeSampler) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
