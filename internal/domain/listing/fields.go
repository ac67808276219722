package listing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RelationFields are set through their raw identifier column.
var RelationFields = map[string]string{
	"category": "category_id",
}

func (l *Listing) FieldValue(field string) (any, bool) {
	switch field {
	case "name":
		return l.Name, true
	case "description":
		return l.Description, true
	case "phone":
		return l.Phone, true
	case "website":
		return l.Website, true
	case "is_active":
		return l.IsActive, true
	case "is_verified":
		return l.IsVerified, true
	case "category":
		if l.CategoryID == nil {
			return nil, true
		}
		return *l.CategoryID, true
	}
	return nil, false
}

func (l *Listing) SetField(field string, v any) error {
	switch field {
	case "name", "description", "phone", "website":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("field %q expects a string, got %T", field, v)
		}
		switch field {
		case "name":
			l.Name = s
		case "description":
			l.Description = s
		case "phone":
			l.Phone = s
		default:
			l.Website = s
		}
	case "is_active", "is_verified":
		b, err := toBool(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		if field == "is_active" {
			l.IsActive = b
		} else {
			l.IsVerified = b
		}
	case "category":
		id, err := rawID(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		l.CategoryID = id
	default:
		return fmt.Errorf("unknown listing field %q", field)
	}
	return nil
}

func (l *Listing) Snapshot() map[string]any {
	out := l.Columns()
	out["listing_id"] = l.ListingID
	return out
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("expects a boolean, got %T", v)
}

// rawID reads an identifier as sent by clients: JSON numbers, integers or
// digit strings. Empty values clear the relation.
func rawID(v any) (*uint64, error) {
	var n uint64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if x < 1 || x != float64(uint64(x)) {
			return nil, fmt.Errorf("invalid identifier %v", x)
		}
		n = uint64(x)
	case int:
		if x < 1 {
			return nil, fmt.Errorf("invalid identifier %d", x)
		}
		n = uint64(x)
	case int64:
		if x < 1 {
			return nil, fmt.Errorf("invalid identifier %d", x)
		}
		n = uint64(x)
	case uint64:
		n = x
	case json.Number:
		p, err := strconv.ParseUint(x.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid identifier %q", x)
		}
		n = p
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		p, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid identifier %q", x)
		}
		n = p
	default:
		return nil, fmt.Errorf("expects an identifier, got %T", v)
	}
	return &n, nil
}
