package metadata

/** @brief Attribute and uniform names the builtin object program is expected to expose. */
const (
	ATTRIBUTE_NAME_POSITION string = "aVertexPosition"
	ATTRIBUTE_NAME_NORMAL   string = "aVertexNormal"
	ATTRIBUTE_NAME_TEXCOORD string = "aTextureCoord"
	UNIFORM_NAME_SAMPLER    string = "uSampler"
	UNIFORM_NAME_MODEL_VIEW string = "uMVMatrix"
	UNIFORM_NAME_PROJECTION string = "uPMatrix"
)

/**
 * @brief Describes where a linked shader program expects its inputs.
 * Objects bind their buffers and uniforms against these slots when drawn.
 */
type ProgramLayout struct {
	/** @brief The renderer API program handle. */
	ProgramID uint32

	PositionAttrib uint32
	NormalAttrib   uint32
	TexCoordAttrib uint32

	SamplerUniform    int32
	ModelViewUniform  int32
	ProjectionUniform int32
}
