// ABOUTME: Case-insensitive keyword search over configurable restaurant fields
// ABOUTME: Parses the searchable field list from config strings

package query

import (
	"fmt"
	"strings"

	"github.com/harper/matjip/internal/models"
)

// Field is a searchable text field.
type Field string

const (
	FieldName    Field = "name"
	FieldTags    Field = "tags"
	FieldMemo    Field = "memo"
	FieldAddress Field = "address"
)

// DefaultFields is used when a filter names no fields.
var DefaultFields = []Field{FieldName, FieldTags, FieldMemo, FieldAddress}

// ParseSearchFields reads a comma separated field list such as
// "name,tags". An empty string yields DefaultFields.
func ParseSearchFields(s string) ([]Field, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultFields, nil
	}
	var fields []Field
	seen := make(map[Field]bool)
	for _, part := range strings.Split(s, ",") {
		f := Field(strings.ToLower(strings.TrimSpace(part)))
		if f == "" {
			continue
		}
		switch f {
		case FieldName, FieldTags, FieldMemo, FieldAddress:
		default:
			return nil, fmt.Errorf("unknown search field %q", part)
		}
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return DefaultFields, nil
	}
	return fields, nil
}

func (f Field) value(r *models.Restaurant) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldTags:
		return r.Tags
	case FieldMemo:
		return r.Memo
	case FieldAddress:
		return r.Address
	}
	return ""
}

// Search returns a new slice of the records whose fields contain keyword,
// ignoring case. A blank keyword keeps everything.
func Search(records []*models.Restaurant, keyword string, fields []Field) []*models.Restaurant {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return append([]*models.Restaurant(nil), records...)
	}
	if len(fields) == 0 {
		fields = DefaultFields
	}

	out := make([]*models.Restaurant, 0, len(records))
	for _, r := range records {
		if Matches(r, needle, fields) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether any of the fields contains the already lowered needle.
func Matches(r *models.Restaurant, needle string, fields []Field) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.value(r)), needle) {
			return true
		}
	}
	return false
}
