package cast

// ICaster is the interface for all value casters. A caster translates
// between a user value of type T and the raw byte representation held as
// an ordered-set member in the store.
//
// Decode errors (e.g. a malformed stored representation) are returned
// as-is to the caller, the multimap engine never swallows them.
type ICaster[T any] interface {
	// Encode serializes a value into its stored representation
	Encode(v T) ([]byte, error)
	// Decode parses a stored representation back into a value
	Decode(raw []byte) (T, error)
}
