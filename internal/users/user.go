package users

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// User is a single record held by the Store.
type User struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Age   int    `json:"age" yaml:"age"`
}

// Input carries the caller-supplied fields for Create and Update. A nil
// pointer (or an empty string) means the field was not provided.
type Input struct {
	Name  *string
	Email *string
	Age   *int
}

func (in Input) name() (string, bool) {
	if in.Name == nil || *in.Name == "" {
		return "", false
	}
	return *in.Name, true
}

func (in Input) email() (string, bool) {
	if in.Email == nil || *in.Email == "" {
		return "", false
	}
	return *in.Email, true
}

func (in Input) age() (int, bool) {
	if in.Age == nil {
		return 0, false
	}
	return *in.Age, true
}

// ParseAge normalises a raw JSON age value to an integer. Numbers and
// numeric strings are accepted; null, an empty string or a missing value
// yield (nil, nil). Anything else is a *ValidationError.
func ParseAge(raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalidAge()
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, invalidAge()
		}
		return &n, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, invalidAge()
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, invalidAge()
	}
	n := int(f)
	return &n, nil
}

func invalidAge() *ValidationError {
	return &ValidationError{Field: "age", Message: MsgInvalidAge}
}
