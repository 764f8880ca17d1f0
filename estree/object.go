package estree

import (
	"bytes"
	"encoding/json"
)

// object is one undecoded ESTree node. Fields are decoded on demand
// because several of them change type with the node ("body", "value",
// "consequent", "expression").
type object map[string]json.RawMessage

var null = []byte("null")

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), null)
}

func (o object) has(key string) bool {
	return !isNull(o[key])
}

func (o object) typ() string {
	return o.str("type")
}

func (o object) str(key string) string {
	var s string
	_ = json.Unmarshal(o[key], &s)
	return s
}

func (o object) boolean(key string) bool {
	var b bool
	_ = json.Unmarshal(o[key], &b)
	return b
}

// isArray reports whether the field holds a JSON array.
func (o object) isArray(key string) bool {
	raw := bytes.TrimSpace(o[key])
	return len(raw) > 0 && raw[0] == '['
}

// span reads acorn style start/end offsets, falling back to a range pair.
func (o object) span() (start, end uint32) {
	if o.has("start") && o.has("end") {
		_ = json.Unmarshal(o["start"], &start)
		_ = json.Unmarshal(o["end"], &end)
		return start, end
	}
	var r [2]uint32
	if err := json.Unmarshal(o["range"], &r); err == nil {
		return r[0], r[1]
	}
	return 0, 0
}

func decodeObject(raw json.RawMessage) (object, error) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, err
	}
	return o, nil
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	if isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
