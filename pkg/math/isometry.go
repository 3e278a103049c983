package math

// Isometry is a rigid transform: a rotation followed by a translation.
// Applied to a point p it yields Rotation(p) + Translation.
type Isometry struct {
	Rotation    Quat
	Translation Vec3
}

// IsometryIdentity returns the identity transform.
func IsometryIdentity() Isometry {
	return Isometry{Rotation: QuatIdentity()}
}

// LookAtIsometry returns the right-handed view transform for an eye at eye
// looking at target. The result maps target onto the -Z axis.
func LookAtIsometry(eye, target, up Vec3) Isometry {
	rot := QuatLookRotation(target.Sub(eye), up)
	return Isometry{
		Rotation:    rot,
		Translation: rot.Rotate(eye).Neg(),
	}
}

// TransformPoint applies the isometry to a point.
func (iso Isometry) TransformPoint(p Vec3) Vec3 {
	return iso.Rotation.Rotate(p).Add(iso.Translation)
}

// TransformVector applies only the rotation part.
func (iso Isometry) TransformVector(v Vec3) Vec3 {
	return iso.Rotation.Rotate(v)
}

// Inverse returns the transform undoing iso.
func (iso Isometry) Inverse() Isometry {
	inv := iso.Rotation.Conjugate()
	return Isometry{
		Rotation:    inv,
		Translation: inv.Rotate(iso.Translation).Neg(),
	}
}

// Mul composes iso after other: the result applies other first.
func (iso Isometry) Mul(other Isometry) Isometry {
	return Isometry{
		Rotation:    iso.Rotation.Mul(other.Rotation).Normalize(),
		Translation: iso.Rotation.Rotate(other.Translation).Add(iso.Translation),
	}
}

// AppendTranslation translates the output of iso by t.
func (iso Isometry) AppendTranslation(t Vec3) Isometry {
	iso.Translation = iso.Translation.Add(t)
	return iso
}

// AppendRotation rotates the output of iso by q about the origin.
func (iso Isometry) AppendRotation(q Quat) Isometry {
	return Isometry{
		Rotation:    q.Mul(iso.Rotation).Normalize(),
		Translation: q.Rotate(iso.Translation),
	}
}

// ToMat4 returns the homogeneous matrix of the transform.
func (iso Isometry) ToMat4() Mat4 {
	m := iso.Rotation.ToMat4()
	m[12], m[13], m[14] = iso.Translation.X, iso.Translation.Y, iso.Translation.Z
	return m
}
