package cast

// NewStringCaster creates a caster that stores values verbatim as strings.
func NewStringCaster() ICaster[string] {
	return &stringCasterImpl{}
}

// stringCasterImpl implements the ICaster interface for string values
type stringCasterImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see cast.ICaster)
// --------------------------------------------------------------------------

func (c stringCasterImpl) Encode(v string) ([]byte, error) {
	return []byte(v), nil
}

func (c stringCasterImpl) Decode(raw []byte) (string, error) {
	return string(raw), nil
}
