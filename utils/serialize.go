package utils

import "encoding/json"

func Serialize(o any) ([]byte, error) {
	return json.Marshal(o)
}

// SerializeIndent is for externally consumed exports (lineage listings)
// where a human may read the output directly.
func SerializeIndent(o any) ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}

func Unserialize(b []byte, o any) error {
	return json.Unmarshal(b, o)
}
