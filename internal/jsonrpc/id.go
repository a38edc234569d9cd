package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestID identifies a request/response pair on the wire. The app-server
// accepts both integer and string ids, so RequestID holds either flavor.
//
// RequestID is a comparable value type and can be used as a map key. The
// zero value is the integer id 0.
type RequestID struct {
	str   string
	num   int64
	isStr bool
}

// IntID returns an integer request id.
func IntID(n int64) RequestID {
	return RequestID{num: n}
}

// StringID returns a string request id.
func StringID(s string) RequestID {
	return RequestID{str: s, isStr: true}
}

// IsString reports whether the id is the string flavor.
func (id RequestID) IsString() bool {
	return id.isStr
}

// Int returns the integer value. Zero for string ids.
func (id RequestID) Int() int64 {
	return id.num
}

// String renders the id for logs and error messages.
func (id RequestID) String() string {
	if id.isStr {
		return id.str
	}

	return strconv.FormatInt(id.num, 10)
}

// MarshalJSON encodes the id as a JSON number or string, preserving the
// flavor it was created with.
func (id RequestID) MarshalJSON() ([]byte, error) {
	if id.isStr {
		return json.Marshal(id.str)
	}

	return json.Marshal(id.num)
}

// UnmarshalJSON decodes a JSON number or string. Any other JSON value is
// rejected.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = RequestID{num: n}

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RequestID{str: s, isStr: true}

		return nil
	}

	return fmt.Errorf("request id must be an integer or string, got %s", data)
}
