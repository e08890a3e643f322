// Package cast provides the value casters used by the multimap engine to
// translate between user values and the raw byte members stored in the
// ordered set.
//
// Three implementations are included: an int64 caster (the engine default,
// decimal string representation), a string caster (verbatim bytes) and a
// generic json caster for structured values. All implement the ICaster
// interface and can be swapped without touching the engine.
package cast
