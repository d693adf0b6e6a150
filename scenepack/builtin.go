package scenepack

import (
	"sort"

	"row-major/pathtrace/vmath/vec3"
)

var builtins = map[string]func() *File{
	"two-spheres": TwoSpheres,
	"materials":   Materials,
	"checker-box": CheckerBox,
}

// BuiltinNames lists the scenes LoadAny accepts by name.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TwoSpheres is a small diffuse sphere resting on a huge one, lit by the sky.
func TwoSpheres() *File {
	return &File{
		Camera: CameraCfg{
			ImageCols:   400,
			ImageRows:   225,
			Eye:         vec3.T{0, 0, 0},
			LookAt:      vec3.T{0, 0, -1},
			VerticalFOV: 90,
		},
		Materials: []MaterialCfg{
			{Lambert: &LambertCfg{Albedo: vec3.T{0.8, 0.8, 0.0}}},
			{Lambert: &LambertCfg{Albedo: vec3.T{0.1, 0.2, 0.5}}},
		},
		Elements: []ElementCfg{
			{Sphere: &SphereCfg{Center: vec3.T{0, -100.5, -1}, Radius: 100}, MaterialIndex: 0},
			{Sphere: &SphereCfg{Center: vec3.T{0, 0, -1}, Radius: 0.5}, MaterialIndex: 1},
		},
	}
}

// Materials puts a diffuse, a hollow glass, and a metal sphere side by side.
func Materials() *File {
	return &File{
		Camera: CameraCfg{
			ImageCols:     400,
			ImageRows:     225,
			Eye:           vec3.T{-2, 2, 1},
			LookAt:        vec3.T{0, 0, -1},
			VerticalFOV:   20,
			DefocusAngle:  10,
			FocusDistance: 3.4,
		},
		Materials: []MaterialCfg{
			{Lambert: &LambertCfg{Albedo: vec3.T{0.8, 0.8, 0.0}}},
			{Lambert: &LambertCfg{Albedo: vec3.T{0.1, 0.2, 0.5}}},
			{Dielectric: &DielectricCfg{RefractiveIndex: 1.5}},
			{Metal: &MetalCfg{Albedo: vec3.T{0.8, 0.6, 0.2}, Fuzz: 0.0}},
		},
		Elements: []ElementCfg{
			{Sphere: &SphereCfg{Center: vec3.T{0, -100.5, -1}, Radius: 100}, MaterialIndex: 0},
			{Sphere: &SphereCfg{Center: vec3.T{0, 0, -1.2}, Radius: 0.5}, MaterialIndex: 1},
			{Sphere: &SphereCfg{Center: vec3.T{-1, 0, -1}, Radius: 0.5}, MaterialIndex: 2},
			{Sphere: &SphereCfg{Center: vec3.T{-1, 0, -1}, Radius: -0.4}, MaterialIndex: 2},
			{Sphere: &SphereCfg{Center: vec3.T{1, 0, -1}, Radius: 0.5}, MaterialIndex: 3},
		},
	}
}

// CheckerBox is a glass block and a brushed-metal sphere on a checkered floor.
func CheckerBox() *File {
	return &File{
		Camera: CameraCfg{
			ImageCols:   320,
			ImageRows:   240,
			Eye:         vec3.T{3, 2, 3},
			LookAt:      vec3.T{0, 0.5, 0},
			VerticalFOV: 40,
		},
		Sky: &SkyCfg{
			Horizon: vec3.T{1, 1, 1},
			Zenith:  vec3.T{0.4, 0.6, 1.0},
		},
		Materials: []MaterialCfg{
			{Checker: &CheckerCfg{Period: 1, Even: vec3.T{0.2, 0.3, 0.1}, Odd: vec3.T{0.9, 0.9, 0.9}}},
			{Dielectric: &DielectricCfg{RefractiveIndex: 1.5}},
			{Metal: &MetalCfg{Albedo: vec3.T{0.7, 0.7, 0.8}, Fuzz: 0.3}},
		},
		Elements: []ElementCfg{
			{Box: &BoxCfg{Lo: vec3.T{-50, -1, -50}, Hi: vec3.T{50, 0, 50}}, MaterialIndex: 0},
			{Box: &BoxCfg{Lo: vec3.T{-0.5, 0, -0.5}, Hi: vec3.T{0.5, 1, 0.5}}, MaterialIndex: 1},
			{Sphere: &SphereCfg{Center: vec3.T{-1.2, 0.6, 0.8}, Radius: 0.6}, MaterialIndex: 2},
		},
	}
}
