package provider

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
)

// schema validates fields of one provider response and reports the first mismatch
// as a *types.ParseError. Absent fields are allowed; present fields must have the
// expected JSON type.
type schema struct {
	provider types.ProviderID
	err      error
}

func parseRoot(provider types.ProviderID, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &types.ParseError{Provider: provider, Field: "body", Reason: "is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, &types.ParseError{Provider: provider, Field: "body", Reason: "is not a JSON object"}
	}
	return root, nil
}

func (s *schema) fail(field, reason string) {
	if s.err == nil {
		s.err = &types.ParseError{Provider: s.provider, Field: field, Reason: reason}
	}
}

// str returns the string at path, def when absent or null
func (s *schema) str(obj gjson.Result, path, field, def string) string {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	if v.Type != gjson.String {
		s.fail(field, "must be a string")
		return def
	}
	return v.String()
}

func (s *schema) boolean(obj gjson.Result, path, field string) bool {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return false
	}
	if !v.IsBool() {
		s.fail(field, "must be a boolean")
		return false
	}
	return v.Bool()
}

func (s *schema) number(obj gjson.Result, path, field string) float64 {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return 0
	}
	if v.Type != gjson.Number {
		s.fail(field, "must be a number")
		return 0
	}
	return v.Float()
}

// objects returns the array elements at path, all of which must be JSON objects
func (s *schema) objects(obj gjson.Result, path, field string) []gjson.Result {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if !v.IsArray() {
		s.fail(field, "must be an array")
		return nil
	}
	items := v.Array()
	for i, item := range items {
		if !item.IsObject() {
			s.fail(field+"."+strconv.Itoa(i), "must be an object")
			return nil
		}
	}
	return items
}
