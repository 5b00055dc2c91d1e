package reader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/achilleasa/raylive/asset"
	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/scene"
	"github.com/achilleasa/raylive/types"
)

var logger = log.New("scene reader")

type yamlSphere struct {
	Center []float32 `yaml:"center"`
	Radius float32   `yaml:"radius"`
	Color  []float32 `yaml:"color"`
}

type yamlSky struct {
	Horizon []float32 `yaml:"horizon"`
	Zenith  []float32 `yaml:"zenith"`
}

type yamlScene struct {
	Spheres []yamlSphere `yaml:"spheres"`
	Sky     *yamlSky     `yaml:"sky"`
}

type yamlReader struct{}

func newYamlReader() *yamlReader {
	return &yamlReader{}
}

// Read a scene in the following format:
//
//	spheres:
//	  - center: [0, 0, 0]
//	    radius: 0.5
//	    color: [0.3, 1.0, 0.3]
//	sky:
//	  horizon: [1, 1, 1]
//	  zenith: [0.5, 0.7, 1.0]
func (r *yamlReader) Read(res *asset.Resource) (*scene.Scene, error) {
	var doc yamlScene
	dec := yaml.NewDecoder(res)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("scene reader: could not parse %s: %w", res.Path(), err)
	}

	sc := scene.Default()
	sc.Spheres = make([]scene.Sphere, 0, len(doc.Spheres))
	for index, ys := range doc.Spheres {
		center, err := vec3(ys.Center)
		if err != nil {
			return nil, fmt.Errorf("scene reader: sphere %d center: %w", index, err)
		}
		color, err := vec3(ys.Color)
		if err != nil {
			return nil, fmt.Errorf("scene reader: sphere %d color: %w", index, err)
		}
		sc.Spheres = append(sc.Spheres, scene.Sphere{Center: center, Radius: ys.Radius, Color: color})
	}

	if doc.Sky != nil {
		var err error
		if doc.Sky.Horizon != nil {
			if sc.Horizon, err = vec3(doc.Sky.Horizon); err != nil {
				return nil, fmt.Errorf("scene reader: sky horizon: %w", err)
			}
		}
		if doc.Sky.Zenith != nil {
			if sc.Zenith, err = vec3(doc.Sky.Zenith); err != nil {
				return nil, fmt.Errorf("scene reader: sky zenith: %w", err)
			}
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	logger.Infof("loaded %d spheres from %s", len(sc.Spheres), res.Path())
	return sc, nil
}

func vec3(v []float32) (types.Vec3, error) {
	if len(v) != 3 {
		return types.Vec3{}, fmt.Errorf("expected 3 components; got %d", len(v))
	}
	return types.XYZ(v[0], v[1], v[2]), nil
}
