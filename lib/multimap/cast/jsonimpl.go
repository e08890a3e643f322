package cast

import "encoding/json"

// NewJSONCaster creates a caster that stores values of an arbitrary type
// as their json encoding.
//
// Note that the stored representation is the set member: two values are
// the same member exactly if their json encodings are byte-identical.
func NewJSONCaster[T any]() ICaster[T] {
	return &jsonCasterImpl[T]{}
}

// jsonCasterImpl implements the ICaster interface using json encoding
type jsonCasterImpl[T any] struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see cast.ICaster)
// --------------------------------------------------------------------------

func (c jsonCasterImpl[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (c jsonCasterImpl[T]) Decode(raw []byte) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}
