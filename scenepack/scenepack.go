// Package scenepack builds scenes and camera settings from JSON scene files
// and from a few scenes compiled into the binary.
package scenepack

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"row-major/pathtrace/camera"
	"row-major/pathtrace/geometry"
	"row-major/pathtrace/material"
	"row-major/pathtrace/ray"
	"row-major/pathtrace/scene"
	"row-major/pathtrace/vmath/vec3"
)

// Pack is a loaded scene and the camera it should be viewed through.
type Pack struct {
	Scene  *scene.Scene
	Camera camera.Options
}

type File struct {
	Camera    CameraCfg     `json:"camera"`
	Sky       *SkyCfg       `json:"sky,omitempty"`
	Materials []MaterialCfg `json:"materials"`
	Elements  []ElementCfg  `json:"elements"`
}

type CameraCfg struct {
	ImageCols     int     `json:"imageCols"`
	ImageRows     int     `json:"imageRows"`
	Eye           vec3.T  `json:"eye"`
	LookAt        vec3.T  `json:"lookAt"`
	Up            vec3.T  `json:"up,omitempty"`
	VerticalFOV   float64 `json:"verticalFov"`
	DefocusAngle  float64 `json:"defocusAngle,omitempty"`
	FocusDistance float64 `json:"focusDistance,omitempty"`
}

type SkyCfg struct {
	Horizon vec3.T `json:"horizon"`
	Zenith  vec3.T `json:"zenith"`
}

// MaterialCfg must set exactly one of its fields.
type MaterialCfg struct {
	Lambert    *LambertCfg    `json:"lambert,omitempty"`
	Checker    *CheckerCfg    `json:"checker,omitempty"`
	Metal      *MetalCfg      `json:"metal,omitempty"`
	Dielectric *DielectricCfg `json:"dielectric,omitempty"`
}

type LambertCfg struct {
	Albedo vec3.T `json:"albedo"`
}

type CheckerCfg struct {
	Period float64 `json:"period"`
	Even   vec3.T  `json:"even"`
	Odd    vec3.T  `json:"odd"`
}

type MetalCfg struct {
	Albedo vec3.T  `json:"albedo"`
	Fuzz   float64 `json:"fuzz"`
}

type DielectricCfg struct {
	RefractiveIndex float64 `json:"refractiveIndex"`
}

// ElementCfg must set exactly one geometry.  MaterialIndex refers to
// File.Materials; elements may share a material.
type ElementCfg struct {
	Sphere        *SphereCfg `json:"sphere,omitempty"`
	Box           *BoxCfg    `json:"box,omitempty"`
	MaterialIndex int        `json:"materialIndex"`
}

type SphereCfg struct {
	Center vec3.T  `json:"center"`
	Radius float64 `json:"radius"`
}

type BoxCfg struct {
	Lo vec3.T `json:"lo"`
	Hi vec3.T `json:"hi"`
}

// Load reads a JSON scene file.
func Load(fileName string) (*Pack, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("while opening scene file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func Decode(in io.Reader) (*Pack, error) {
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()

	file := &File{}
	if err := dec.Decode(file); err != nil {
		return nil, fmt.Errorf("while decoding scene JSON: %w", err)
	}

	return file.Build()
}

// LoadAny treats nameOrPath as a built-in scene name if there is one, and as
// a file path otherwise.
func LoadAny(nameOrPath string) (*Pack, error) {
	if b, ok := builtins[nameOrPath]; ok {
		return b().Build()
	}
	return Load(nameOrPath)
}

// Build converts the file to a scene.  Materials are built once and shared by
// every element that refers to them.
func (f *File) Build() (*Pack, error) {
	realScene := &scene.Scene{}

	if f.Sky != nil {
		realScene.Sky = &scene.GradientSky{
			Horizon: f.Sky.Horizon,
			Zenith:  f.Sky.Zenith,
		}
	}

	materials := make([]material.Material, 0, len(f.Materials))
	for i, m := range f.Materials {
		realMaterial, err := convertMaterial(m)
		if err != nil {
			return nil, fmt.Errorf("while converting material %d: %w", i, err)
		}
		materials = append(materials, realMaterial)
	}

	for i, e := range f.Elements {
		if e.MaterialIndex < 0 || e.MaterialIndex >= len(materials) {
			return nil, fmt.Errorf("element %d: material index %d out of range [0, %d)", i, e.MaterialIndex, len(materials))
		}

		g, err := convertGeometry(e)
		if err != nil {
			return nil, fmt.Errorf("while converting element %d: %w", i, err)
		}

		realScene.Add(g, materials[e.MaterialIndex])
	}

	return &Pack{
		Scene: realScene,
		Camera: camera.Options{
			ImageCols:     f.Camera.ImageCols,
			ImageRows:     f.Camera.ImageRows,
			Eye:           f.Camera.Eye,
			LookAt:        f.Camera.LookAt,
			Up:            f.Camera.Up,
			VerticalFOV:   f.Camera.VerticalFOV,
			DefocusAngle:  f.Camera.DefocusAngle,
			FocusDistance: f.Camera.FocusDistance,
		},
	}, nil
}

func convertMaterial(in MaterialCfg) (material.Material, error) {
	set := 0
	var out material.Material

	if in.Lambert != nil {
		set++
		out = material.NewLambert(in.Lambert.Albedo)
	}
	if in.Checker != nil {
		set++
		if in.Checker.Period <= 0 {
			return nil, fmt.Errorf("checker period must be positive (got %v)", in.Checker.Period)
		}
		out = &material.Lambert{
			Albedo: material.CheckerboardVolume(in.Checker.Period, in.Checker.Even, in.Checker.Odd),
		}
	}
	if in.Metal != nil {
		set++
		out = material.NewMetal(in.Metal.Albedo, in.Metal.Fuzz)
	}
	if in.Dielectric != nil {
		set++
		if in.Dielectric.RefractiveIndex <= 0 {
			return nil, fmt.Errorf("refractive index must be positive (got %v)", in.Dielectric.RefractiveIndex)
		}
		out = &material.Dielectric{RefractiveIndex: in.Dielectric.RefractiveIndex}
	}

	if set != 1 {
		return nil, fmt.Errorf("exactly one material kind must be set (got %d)", set)
	}
	return out, nil
}

func convertGeometry(in ElementCfg) (geometry.Geometry, error) {
	switch {
	case in.Sphere != nil && in.Box != nil:
		return nil, fmt.Errorf("element sets both sphere and box")
	case in.Sphere != nil:
		return &geometry.Sphere{
			Center: in.Sphere.Center,
			Radius: in.Sphere.Radius,
		}, nil
	case in.Box != nil:
		b := &geometry.Box{}
		for i := 0; i < 3; i++ {
			if in.Box.Hi[i] < in.Box.Lo[i] {
				return nil, fmt.Errorf("box axis %d is inverted (lo %v, hi %v)", i, in.Box.Lo[i], in.Box.Hi[i])
			}
			b.Spans[i] = ray.Span{Lo: in.Box.Lo[i], Hi: in.Box.Hi[i]}
		}
		return b, nil
	}

	return nil, fmt.Errorf("element has no geometry")
}
