package config

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/math"
)

const (
	MeshCube  string = "cube"
	MeshPlane string = "plane"

	TextureChecker string = "checker"
)

type Application struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position.
	PosX uint32 `toml:"pos_x"`
	PosY uint32 `toml:"pos_y"`
	// Window starting size.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

type Logging struct {
	// One of debug, info, warn, error, fatal.
	Level string `toml:"level"`
	// Optional file the log is written to instead of stderr.
	File string `toml:"file"`
}

type Camera struct {
	Position [3]float32 `toml:"position"`
	// Degrees.
	Pitch float32 `toml:"pitch"`
	Yaw   float32 `toml:"yaw"`
	FOV   float32 `toml:"fov"`
	Near  float32 `toml:"near"`
	Far   float32 `toml:"far"`
}

// ObjectConfig describes one renderable object of the scene.
type ObjectConfig struct {
	Name string `toml:"name"`
	// "cube" or "plane".
	Mesh string `toml:"mesh"`
	// Width, height and depth of the generated mesh. A plane ignores height.
	Size [3]float32 `toml:"size"`
	// How many times the texture repeats across a face.
	Tiling float32 `toml:"tiling"`
	// Path to an image, relative to the config file, or "checker".
	Texture string `toml:"texture"`

	Position [3]float32 `toml:"position"`
	// Euler angles in degrees, applied X then Y then Z.
	Rotation [3]float32 `toml:"rotation"`
	Scale    [3]float32 `toml:"scale"`
	// Degrees per second added to Rotation every frame.
	Spin [3]float32 `toml:"spin"`
}

type Scene struct {
	ClearColor [4]float32     `toml:"clear_color"`
	Objects    []ObjectConfig `toml:"objects"`
}

type Config struct {
	Application Application `toml:"application"`
	Logging     Logging     `toml:"logging"`
	Camera      Camera      `toml:"camera"`
	Scene       Scene       `toml:"scene"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Application: Application{
			Name:   "propengine",
			PosX:   100,
			PosY:   100,
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: Logging{Level: "info"},
		Camera: Camera{
			Position: [3]float32{0, 3, 10},
			Pitch:    -15,
			FOV:      45,
			Near:     0.1,
			Far:      1000,
		},
		Scene: Scene{
			ClearColor: [4]float32{0.1, 0.1, 0.12, 1},
			Objects: []ObjectConfig{
				{
					Name:    "crate",
					Mesh:    MeshCube,
					Size:    [3]float32{2, 2, 2},
					Texture: TextureChecker,
					Spin:    [3]float32{0, 30, 0},
				},
				{
					Name:     "floor",
					Mesh:     MeshPlane,
					Size:     [3]float32{20, 0, 20},
					Tiling:   10,
					Texture:  TextureChecker,
					Position: [3]float32{0, -1, 0},
				},
			},
		},
	}
}

// Load reads a TOML file. Keys not defined by Config are rejected, missing
// values fall back to defaults and out-of-range values are clamped.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %q", path)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}

func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	// a file that lists objects replaces the default scene entirely
	cfg.Scene.Objects = nil

	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.Errorf("unknown keys:\n%s", strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, errors.Errorf("line %d column %d: %s", row, col, decodeErr.Error())
		}
		return nil, errors.Wrap(err, "decode")
	}
	if err := cfg.sanitize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) sanitize() error {
	c.Application.Width = math.Clamp(c.Application.Width, 320, 7680)
	c.Application.Height = math.Clamp(c.Application.Height, 200, 4320)

	c.Camera.FOV = math.Clamp(c.Camera.FOV, 10, 120)
	c.Camera.Pitch = math.Clamp(c.Camera.Pitch, -89, 89)
	if c.Camera.Near <= 0 {
		c.Camera.Near = 0.1
	}
	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = c.Camera.Near * 10000
	}
	for i := range c.Scene.ClearColor {
		c.Scene.ClearColor[i] = math.Clamp(c.Scene.ClearColor[i], 0, 1)
	}

	seen := make(map[string]struct{}, len(c.Scene.Objects))
	for i := range c.Scene.Objects {
		o := &c.Scene.Objects[i]
		if o.Name == "" {
			return errors.Errorf("scene object %d has no name", i)
		}
		if _, dup := seen[o.Name]; dup {
			return errors.Errorf("scene object %q is defined twice", o.Name)
		}
		seen[o.Name] = struct{}{}

		switch o.Mesh {
		case MeshCube, MeshPlane:
		case "":
			o.Mesh = MeshCube
		default:
			return errors.Errorf("scene object %q: unknown mesh %q", o.Name, o.Mesh)
		}
		for j := range o.Size {
			if o.Size[j] <= 0 {
				o.Size[j] = 1
			}
		}
		if o.Tiling <= 0 {
			o.Tiling = 1
		}
		if o.Scale == [3]float32{} {
			o.Scale = [3]float32{1, 1, 1}
		}
		if o.Texture == "" {
			o.Texture = TextureChecker
		}
	}
	return nil
}

// Object returns the object named name.
func (c *Config) Object(name string) (*ObjectConfig, bool) {
	for i := range c.Scene.Objects {
		if c.Scene.Objects[i].Name == name {
			return &c.Scene.Objects[i], true
		}
	}
	return nil, false
}
