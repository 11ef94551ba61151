package transcode

// MappingError reports an edition-2 entity with no edition-1
// representation: an unmapped parameter, an unexpressible level or time
// range, or an unsupported template. The description names the entity.
type MappingError struct {
	Description string
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	return e.Description
}
