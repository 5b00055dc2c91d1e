package scene

import (
	"errors"
	"fmt"

	"github.com/achilleasa/raylive/types"
)

// A sphere primitive.
type Sphere struct {
	Center types.Vec3
	Radius float32
	Color  types.Vec3
}

// Scene contains the primitives that the engine traces and the colors of
// the sky gradient used for rays that escape the scene.
type Scene struct {
	Spheres []Sphere

	// Sky gradient; Horizon is used for rays pointing down, Zenith for rays
	// pointing straight up.
	Horizon types.Vec3
	Zenith  types.Vec3
}

// Create the default scene: a unit-diameter sphere at the origin, a small
// sphere to its right and a large sphere acting as the ground plane.
func Default() *Scene {
	return &Scene{
		Spheres: []Sphere{
			{Center: types.XYZ(0, 0, 0), Radius: 0.5, Color: types.XYZ(0.3, 1.0, 0.3)},
			{Center: types.XYZ(2, 0, 0), Radius: 0.2, Color: types.XYZ(0.8, 0.0, 0.3)},
			{Center: types.XYZ(0, -100.5, -1), Radius: 100, Color: types.XYZ(0, 0, 0)},
		},
		Horizon: types.XYZ(1, 1, 1),
		Zenith:  types.XYZ(0.5, 0.7, 1.0),
	}
}

// Check scene primitives for errors.
func (s *Scene) Validate() error {
	if s == nil {
		return errors.New("scene: no scene defined")
	}
	for index, sp := range s.Spheres {
		if sp.Radius <= 0 {
			return fmt.Errorf("scene: sphere %d has non-positive radius %f", index, sp.Radius)
		}
	}
	return nil
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	out := *s
	out.Spheres = append([]Sphere(nil), s.Spheres...)
	return &out
}
