package math

import "github.com/chewxy/math32"

// Quat represents a unit quaternion rotation.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math32.Sincos(angle / 2)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

// QuatFromEuler builds a rotation from roll (X), pitch (Y) and yaw (Z) angles,
// applied in that order.
func QuatFromEuler(roll, pitch, yaw float32) Quat {
	qx := QuatFromAxisAngle(UnitX, roll)
	qy := QuatFromAxisAngle(UnitY, pitch)
	qz := QuatFromAxisAngle(UnitZ, yaw)
	return qz.Mul(qy).Mul(qx)
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	inv := 1 / length
	return Quat{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Mul combines rotations: the result applies other first, then q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx, xy, xz, xw := q.X*q.X, q.X*q.Y, q.X*q.Z, q.X*q.W
	yy, yz, yw := q.Y*q.Y, q.Y*q.Z, q.Y*q.W
	zz, zw := q.Z*q.Z, q.Z*q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// QuatLookRotation returns the rotation that maps world space into a
// right-handed view space where dir points down -Z and up is roughly +Y.
func QuatLookRotation(dir, up Vec3) Quat {
	f := dir.Normalize()
	s := f.Cross(up).Normalize()
	if s == (Vec3{}) {
		// dir parallel to up; pick any perpendicular side axis
		s = f.Cross(UnitX).Normalize()
		if s == (Vec3{}) {
			s = f.Cross(UnitZ).Normalize()
		}
	}
	u := s.Cross(f)

	// Rows of the view rotation are s, u, -f.
	m00, m01, m02 := s.X, s.Y, s.Z
	m10, m11, m12 := u.X, u.Y, u.Z
	m20, m21, m22 := -f.X, -f.Y, -f.Z

	var q Quat
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		r := math32.Sqrt(trace+1) * 2
		q = Quat{W: 0.25 * r, X: (m21 - m12) / r, Y: (m02 - m20) / r, Z: (m10 - m01) / r}
	case m00 > m11 && m00 > m22:
		r := math32.Sqrt(1+m00-m11-m22) * 2
		q = Quat{W: (m21 - m12) / r, X: 0.25 * r, Y: (m01 + m10) / r, Z: (m02 + m20) / r}
	case m11 > m22:
		r := math32.Sqrt(1+m11-m00-m22) * 2
		q = Quat{W: (m02 - m20) / r, X: (m01 + m10) / r, Y: 0.25 * r, Z: (m12 + m21) / r}
	default:
		r := math32.Sqrt(1+m22-m00-m11) * 2
		q = Quat{W: (m10 - m01) / r, X: (m02 + m20) / r, Y: (m12 + m21) / r, Z: 0.25 * r}
	}
	return q.Normalize()
}
