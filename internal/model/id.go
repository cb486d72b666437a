package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ID is a record identifier as it appears in a persisted collection. Seed
// files carry either JSON numbers or JSON strings; both decode to the same
// canonical text, and ids are always compared through that text. The original
// kind is kept so a record re-encodes the way it was stored.
type ID struct {
	text    string
	numeric bool
}

func StringID(s string) ID { return ID{text: s} }

func NumericID(n int64) ID { return ID{text: strconv.FormatInt(n, 10), numeric: true} }

func (id ID) String() string { return id.text }

// IsZero reports an absent or null id.
func (id ID) IsZero() bool { return id.text == "" }

// Matches reports whether id refers to the given canonical text.
func (id ID) Matches(s string) bool { return id.text == s }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: want string or number, got %s", data)
	}
	*id = numberID(n)
	return nil
}

// numberID canonicalises a JSON number so that 1, 1.0 and 1e0 share the text
// "1". Values whose decimal form would switch to exponent notation keep the
// text they were stored with.
func numberID(n json.Number) ID {
	if i, err := n.Int64(); err == nil {
		return NumericID(i)
	}
	f, err := n.Float64()
	if err != nil {
		return ID{text: n.String(), numeric: true}
	}
	if abs := math.Abs(f); f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return ID{text: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
	}
	return ID{text: n.String(), numeric: true}
}
