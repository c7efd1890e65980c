package serialization

import "strconv"

// Handle is an opaque reference to a system object that travels beside the
// message bytes. The zero Handle is invalid and encodes as an absent handle.
type Handle struct {
	value uint64
	valid bool
}

// NewHandle wraps a raw handle value.
func NewHandle(value uint64) Handle {
	return Handle{value: value, valid: true}
}

func (h Handle) IsValid() bool { return h.valid }

// Value returns the raw handle value, 0 for an invalid handle.
func (h Handle) Value() uint64 { return h.value }

func (h Handle) String() string {
	if !h.valid {
		return "handle(invalid)"
	}
	return "handle(" + strconv.FormatUint(h.value, 10) + ")"
}
