package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestUnitVector2FromDeg(t *testing.T) {
	for _, angle := range []float64{0, 60, 120, 270, -45, 725} {
		v := UnitVector2FromDeg(angle)
		test.That(t, v.Magnitude(), test.ShouldAlmostEqual, 1.0)
	}
	v := UnitVector2FromDeg(90)
	test.That(t, v.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, v.Y, test.ShouldAlmostEqual, 1.0)
}

func TestRotateDeg(t *testing.T) {
	ahead := NewVector2(1, 0)

	t.Run("quarter turn", func(t *testing.T) {
		r := ahead.RotateDeg(90)
		test.That(t, r.AlmostEqual(NewVector2(0, 1), 1e-12), test.ShouldBeTrue)
		r = ahead.RotateDeg(-90)
		test.That(t, r.AlmostEqual(NewVector2(0, -1), 1e-12), test.ShouldBeTrue)
	})

	t.Run("does not modify the receiver", func(t *testing.T) {
		_ = ahead.RotateDeg(45)
		test.That(t, ahead.X, test.ShouldEqual, 1.0)
		test.That(t, ahead.Y, test.ShouldEqual, 0.0)
	})

	t.Run("full turn is identity", func(t *testing.T) {
		v := NewVector2(0.3, -0.7)
		test.That(t, v.RotateDeg(360).AlmostEqual(v, 1e-12), test.ShouldBeTrue)
		test.That(t, v.RotateDeg(-720).AlmostEqual(v, 1e-12), test.ShouldBeTrue)
	})

	t.Run("preserves magnitude", func(t *testing.T) {
		v := NewVector2(3, 4)
		test.That(t, v.RotateDeg(33).Magnitude(), test.ShouldAlmostEqual, 5.0)
	})
}

func TestScalarProject(t *testing.T) {
	v := NewVector2(2, 3)
	test.That(t, v.ScalarProject(NewVector2(1, 0)), test.ShouldEqual, 2.0)
	test.That(t, v.ScalarProject(NewVector2(0, 1)), test.ShouldEqual, 3.0)
	test.That(t, v.ScalarProject(UnitVector2FromDeg(45)), test.ShouldAlmostEqual, 5/math.Sqrt2)
	test.That(t, NewVector2(0, 0).ScalarProject(UnitVector2FromDeg(10)), test.ShouldEqual, 0.0)
}
