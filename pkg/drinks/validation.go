package drinks

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/platinummonkey/coffeeshop/pkg/httputil"
)

// ValidationError reports why a payload was rejected. It renders as the
// envelope error it wraps, so the reason never reaches the client.
type ValidationError struct {
	Err    *httputil.APIError
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Message, e.Reason)
}

// Unwrap allows errors.Is against httputil.ErrBadRequest and ErrUnprocessable
func (e *ValidationError) Unwrap() error { return e.Err }

// HTTPStatus implements httputil.StatusError
func (e *ValidationError) HTTPStatus() int { return e.Err.Status }

// PublicMessage implements httputil.StatusError
func (e *ValidationError) PublicMessage() string { return e.Err.Message }

func badRequest(format string, args ...interface{}) error {
	return &ValidationError{Err: httputil.ErrBadRequest, Reason: fmt.Sprintf(format, args...)}
}

func unprocessable(format string, args ...interface{}) error {
	return &ValidationError{Err: httputil.ErrUnprocessable, Reason: fmt.Sprintf(format, args...)}
}

// ValidatePayload checks a decoded JSON body for create/update. See the
// package documentation for the pass order.
func ValidatePayload(body interface{}) error {
	obj, recipe, err := checkPresence(body)
	if err != nil {
		return err
	}
	if err := checkTypes(obj, recipe); err != nil {
		return err
	}
	return checkNonEmpty(obj, recipe)
}

// DecodePayload validates body and converts it into typed values
func DecodePayload(body interface{}) (string, []Ingredient, error) {
	if err := ValidatePayload(body); err != nil {
		return "", nil, err
	}

	obj := body.(map[string]interface{})
	items := obj["recipe"].([]interface{})

	recipe := make([]Ingredient, 0, len(items))
	for _, item := range items {
		fields := item.(map[string]interface{})
		parts, _ := asInt(fields["parts"])
		recipe = append(recipe, Ingredient{
			Color: fields["color"].(string),
			Name:  fields["name"].(string),
			Parts: parts,
		})
	}

	return obj["title"].(string), recipe, nil
}

func checkPresence(body interface{}) (map[string]interface{}, []map[string]interface{}, error) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, nil, badRequest("body must be a JSON object")
	}
	if _, ok := obj["title"]; !ok {
		return nil, nil, badRequest("title is required")
	}
	rawRecipe, ok := obj["recipe"]
	if !ok {
		return nil, nil, badRequest("recipe is required")
	}
	items, ok := rawRecipe.([]interface{})
	if !ok {
		return nil, nil, badRequest("recipe must be a list")
	}

	recipe := make([]map[string]interface{}, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, nil, badRequest("recipe[%d] must be an object", i)
		}
		for _, key := range []string{"color", "name", "parts"} {
			if _, ok := fields[key]; !ok {
				return nil, nil, badRequest("recipe[%d].%s is required", i, key)
			}
		}
		recipe = append(recipe, fields)
	}
	return obj, recipe, nil
}

func checkTypes(obj map[string]interface{}, recipe []map[string]interface{}) error {
	if _, ok := obj["title"].(string); !ok {
		return unprocessable("title must be a string")
	}
	for i, fields := range recipe {
		if _, ok := fields["color"].(string); !ok {
			return unprocessable("recipe[%d].color must be a string", i)
		}
		if _, ok := fields["name"].(string); !ok {
			return unprocessable("recipe[%d].name must be a string", i)
		}
		if _, ok := asInt(fields["parts"]); !ok {
			return unprocessable("recipe[%d].parts must be an integer", i)
		}
	}
	return nil
}

func checkNonEmpty(obj map[string]interface{}, recipe []map[string]interface{}) error {
	title := obj["title"].(string)
	if title == "" {
		return badRequest("title must not be empty")
	}
	for i, fields := range recipe {
		if fields["color"].(string) == "" {
			return badRequest("recipe[%d].color must not be empty", i)
		}
		if fields["name"].(string) == "" {
			return badRequest("recipe[%d].name must not be empty", i)
		}
	}
	return nil
}

// asInt accepts integral JSON numbers only. Booleans and fractional or
// exponent forms are rejected.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 0)
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		if int64(int(n)) != n {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
