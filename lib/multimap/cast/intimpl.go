package cast

import "strconv"

// NewIntCaster creates the default caster: values are int64, stored as
// their decimal string representation.
func NewIntCaster() ICaster[int64] {
	return &intCasterImpl{}
}

// intCasterImpl implements the ICaster interface for int64 values
type intCasterImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see cast.ICaster)
// --------------------------------------------------------------------------

func (c intCasterImpl) Encode(v int64) ([]byte, error) {
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (c intCasterImpl) Decode(raw []byte) (int64, error) {
	return strconv.ParseInt(string(raw), 10, 64)
}
