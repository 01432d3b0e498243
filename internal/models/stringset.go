package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedList is returned when a list field looks like JSON but cannot be decoded.
var ErrMalformedList = errors.New("malformed list value")

// StringSet is a de-duplicated list of trimmed strings. Order of first
// appearance is kept so that display output is stable.
type StringSet []string

// NewStringSet builds a set from raw items, dropping blanks and
// case-insensitive duplicates.
func NewStringSet(items ...string) StringSet {
	seen := make(map[string]bool, len(items))
	out := make(StringSet, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// ParseStringSet normalizes a loosely typed list column. Legacy rows store
// lists as JSON arrays, as comma separated text or as a single value.
// Text that starts like a JSON array but does not decode yields an empty set
// and ErrMalformedList.
func ParseStringSet(raw string) (StringSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return StringSet{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return StringSet{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
		}
		return NewStringSet(items...), nil
	}

	return NewStringSet(strings.Split(raw, ",")...), nil
}

// Lower returns the lower-cased members.
func (s StringSet) Lower() []string {
	out := make([]string, 0, len(s))
	for _, item := range s {
		out = append(out, strings.ToLower(item))
	}
	return out
}

// Union returns s followed by members of other not already present.
func (s StringSet) Union(other StringSet) StringSet {
	merged := make([]string, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewStringSet(merged...)
}

// Contains reports whether item is a member, ignoring case.
func (s StringSet) Contains(item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	for _, member := range s {
		if strings.ToLower(member) == item {
			return true
		}
	}
	return false
}

func (s StringSet) String() string {
	return strings.Join(s, ", ")
}

// StringList is an ordered list persisted as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", value)
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = StringList(items)
	return nil
}

// ParseListField parses a loose list column. When the value is malformed the
// field name is appended to malformed and an empty set is returned.
func ParseListField(field, raw string, malformed *[]string) StringSet {
	set, err := ParseStringSet(raw)
	if err != nil {
		*malformed = append(*malformed, field)
	}
	return set
}
