package reader

import (
	"fmt"
	"strings"

	"github.com/achilleasa/raylive/asset"
	"github.com/achilleasa/raylive/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or URL. An empty filename selects the
// built-in default scene.
func ReadScene(filename string) (*scene.Scene, error) {
	if filename == "" {
		return scene.Default(), nil
	}

	// Select reader based on file extension
	var reader Reader
	switch {
	case strings.HasSuffix(filename, ".yaml"), strings.HasSuffix(filename, ".yml"):
		reader = newYamlReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format for %q", filename)
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
