package metadata

/**
 * @brief Represents a texture resident on the GPU.
 * Textures are shared between objects; whoever created one destroys it.
 */
type Texture struct {
	/** @brief The renderer API texture handle. */
	ID uint32
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name, usually the file it came from. */
	Name string
}
