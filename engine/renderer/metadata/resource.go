package metadata

type ResourceType int

/** @brief Pre-defined asset types. */
const (
	/** @brief Text resource type. */
	ResourceTypeText ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Material definition resource type. */
	ResourceTypeMaterial
	/** @brief Shader source resource type. */
	ResourceTypeShader
	/** @brief Anything the index does not recognise. */
	ResourceTypeUnknown
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeText:
		return "text"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeShader:
		return "shader"
	}
	return "unknown"
}

/**
 * @brief A generic structure for a loaded asset. All asset loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The kind of data held. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The decoded resource data. */
	Data interface{}
}
