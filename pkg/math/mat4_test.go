package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestDiagonalFlip(t *testing.T) {
	m := Diagonal(-1, -1, 1, 1)
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{-1, -2, 3}
	if got != want {
		t.Errorf("Diagonal flip: got %v, want %v", got, want)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}

	// Points on the near and far planes land on the depth range ends.
	near := m.TransformPoint(Vec3{0, 0, -0.1})
	far := m.TransformPoint(Vec3{0, 0, -100})
	if abs(near.Z+1) > 0.001 {
		t.Errorf("near plane depth: got %f, want -1", near.Z)
	}
	if abs(far.Z-1) > 0.001 {
		t.Errorf("far plane depth: got %f, want 1", far.Z)
	}
}

func TestPerspectiveAspect(t *testing.T) {
	m1 := Perspective(1, 1, 0.1, 10)
	m2 := Perspective(1, 2, 0.1, 10)
	if abs(m2[0]*2-m1[0]) > 0.0001 {
		t.Errorf("aspect should scale X: got %f, want %f", m2[0], m1[0]/2)
	}
	if m1[5] != m2[5] {
		t.Errorf("aspect should not change Y: got %f, want %f", m2[5], m1[5])
	}
}

func TestLookAt(t *testing.T) {
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, UnitY)

	got := m.TransformPoint(Vec3{})
	want := Vec3{0, 0, -5}
	if !vecNear(got, want, 0.0001) {
		t.Errorf("LookAt target in view space: got %v, want %v", got, want)
	}
	if m[15] != 1 {
		t.Errorf("LookAt [15] should be 1, got %f", m[15])
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(QuatFromAxisAngle(UnitY, 0.7).ToMat4())
	id := m.Mul(m.Inverse())

	want := Identity()
	for i := 0; i < 16; i++ {
		if abs(id[i]-want[i]) > 0.0001 {
			t.Errorf("M * M^-1 element %d: got %f, want %f", i, id[i], want[i])
		}
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	if zero.Inverse() != Identity() {
		t.Error("singular matrix inverse should fall back to identity")
	}
}

func TestMat4IsFinite(t *testing.T) {
	m := Identity()
	if !m.IsFinite() {
		t.Error("identity should be finite")
	}
	m[3] = float32(math.Inf(1))
	if m.IsFinite() {
		t.Error("matrix with Inf should not be finite")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func vecNear(a, b Vec3, eps float32) bool {
	return abs(a.X-b.X) <= eps && abs(a.Y-b.Y) <= eps && abs(a.Z-b.Z) <= eps
}
