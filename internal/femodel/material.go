package femodel

import (
	"fmt"
	"strings"
)

// MaterialKind distinguishes linear elastic material models.
type MaterialKind int

const (
	Isotropic MaterialKind = iota
	Orthotropic
)

func (k MaterialKind) String() string {
	switch k {
	case Isotropic:
		return "isotropic"
	case Orthotropic:
		return "orthotropic"
	}
	return fmt.Sprintf("MaterialKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler
func (k MaterialKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *MaterialKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "isotropic":
		*k = Isotropic
	case "orthotropic":
		*k = Orthotropic
	default:
		return fmt.Errorf("unknown material kind %q", string(b))
	}
	return nil
}

// OrthotropicConstants holds the engineering constants of an orthotropic
// material in its principal axes.
type OrthotropicConstants struct {
	EX   float64 `json:"ex"`
	EY   float64 `json:"ey"`
	EZ   float64 `json:"ez"`
	NuYZ float64 `json:"nu_yz"`
	NuZX float64 `json:"nu_zx"`
	NuXY float64 `json:"nu_xy"`
	GYZ  float64 `json:"g_yz"`
	GZX  float64 `json:"g_zx"`
	GXY  float64 `json:"g_xy"`
}

// Material is a named linear elastic material.
type Material struct {
	Name string       `json:"name"`
	Kind MaterialKind `json:"kind"`

	// Isotropic constants
	YoungsModulus float64 `json:"youngs_modulus,omitempty"`
	PoissonsRatio float64 `json:"poissons_ratio,omitempty"`

	Orthotropic OrthotropicConstants `json:"orthotropic"`
}

// NewIsotropic returns an isotropic material.
func NewIsotropic(name string, youngsModulus, poissonsRatio float64) Material {
	return Material{
		Name:          name,
		Kind:          Isotropic,
		YoungsModulus: youngsModulus,
		PoissonsRatio: poissonsRatio,
	}
}

// Compliance component order used by OrthotropicFromCompliance and
// Material.Compliance.
const (
	D1111 = iota
	D1122
	D2222
	D1133
	D2233
	D3333
	D1212
	D1313
	D2323
)

// OrthotropicFromCompliance builds an orthotropic material from the nine
// compliance matrix terms, indexed by the D1111..D2323 constants.
func OrthotropicFromCompliance(name string, d [9]float64) Material {
	return Material{
		Name: name,
		Kind: Orthotropic,
		Orthotropic: OrthotropicConstants{
			EX:   1 / d[D1111],
			EY:   1 / d[D2222],
			EZ:   1 / d[D3333],
			NuYZ: -d[D2233] / d[D2222],
			NuZX: -d[D1133] / d[D3333],
			NuXY: -d[D1122] / d[D1111],
			GYZ:  1 / d[D2323],
			GZX:  1 / d[D1313],
			GXY:  1 / d[D1212],
		},
	}
}

// Compliance returns the compliance terms of an orthotropic material.
// It is the inverse of OrthotropicFromCompliance.
func (m Material) Compliance() [9]float64 {
	o := m.Orthotropic
	var d [9]float64
	d[D1111] = 1 / o.EX
	d[D1122] = -o.NuXY / o.EX
	d[D2222] = 1 / o.EY
	d[D1133] = -o.NuZX / o.EZ
	d[D2233] = -o.NuYZ / o.EY
	d[D3333] = 1 / o.EZ
	d[D1212] = 1 / o.GXY
	d[D1313] = 1 / o.GZX
	d[D2323] = 1 / o.GYZ
	return d
}

// Section binds a material to an element set.
type Section struct {
	ElementSet string `json:"element_set"`
	Material   string `json:"material"`
}
