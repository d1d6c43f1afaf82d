package codec

import (
	"encoding/json"
	"io"
)

// JSON implements both Marshaler and Unmarshaler on top of encoding/json.
type JSON struct{}

var (
	_ Marshaler   = JSON{}
	_ Unmarshaler = JSON{}
)

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) NewEncoder(w io.Writer) Encoder {
	return json.NewEncoder(w)
}

func (JSON) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}

func (JSON) NewDecoder(r io.Reader) Decoder {
	return json.NewDecoder(r)
}
