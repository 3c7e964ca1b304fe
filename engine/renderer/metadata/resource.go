package metadata

import "time"

type ResourceType int

/** @brief Kinds of files the asset manager knows how to load and watch. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief A decodable image used as an object texture. */
	ResourceTypeImage
	/** @brief A TOML scene/engine configuration file. */
	ResourceTypeScene
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeScene:
		return "scene"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief When the resource was read from disk. */
	LoadedAt time.Time
	/** @brief The resource data, e.g. *ImageResourceData. */
	Data interface{}
}

/** @brief Decoded image pixels, always tightly packed RGBA8. */
type ImageResourceData struct {
	ChannelCount uint8
	Width        uint32
	Height       uint32
	Pixels       []uint8
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Flip rows so the first row is the bottom of the image, as GL samples it. */
	FlipY bool
}
