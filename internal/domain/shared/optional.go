package shared

// Optional carries a value together with an explicit presence flag.
// It lets partial updates distinguish "field not supplied" from "field set to its zero value",
// so clearing an optional attribute is an instruction of its own.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Get returns the value and whether it was supplied
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}
