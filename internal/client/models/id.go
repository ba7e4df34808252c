package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is a resource identifier. The backend emits integers for some resources
// and strings for others; both decode into ID.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Int returns the numeric form of id, for endpoints that take integer paths.
func (id ID) Int() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}
