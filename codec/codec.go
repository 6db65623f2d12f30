// Package codec encodes self-describing records such as fragment descriptors.
//
// A codec is chosen by name. Records written with one codec are read back by
// selecting the same codec.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	if name == Default.Name() {
		return Default, true
	}
	switch name {
	case "json":
		return JSON{}, true
	}
	return nil, false
}
