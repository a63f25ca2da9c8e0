package marshal

import "encoding/json"

// Marshaller converts attribute values to and from their stored form.
type Marshaller interface {
	// Marshallable reports whether the value can be encoded.
	Marshallable(value any) bool

	// Marshal encodes the value.
	Marshal(value any) ([]byte, error)

	// Unmarshal decodes a stored value.
	Unmarshal(data []byte) (any, error)
}

// JSON encodes attribute values as JSON documents.
type JSON struct{}

// Marshallable reports whether encoding/json accepts the value.
func (JSON) Marshallable(value any) bool {
	_, err := json.Marshal(value)
	return err == nil
}

// Marshal encodes the value as JSON.
func (JSON) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Unmarshal decodes a stored JSON document.
func (JSON) Unmarshal(data []byte) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}
