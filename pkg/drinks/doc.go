// Package drinks defines the drink record, its JSON projections, and the
// staged validator for create and update payloads.
//
// # Projections
//
// List endpoints return Short ({"id","title"}). Detail, create and update
// return Long, which adds the decoded recipe.
//
// # Validation
//
// ValidatePayload inspects the untyped decoded body in three passes:
//
//  1. presence: object body, title and recipe keys, recipe is a list, every
//     ingredient is an object with color, name and parts (400)
//  2. types: title, color and name are strings, parts is an integer (422)
//  3. non-empty: title, color and name are not "" (400)
//
// A payload that fails several checks reports the earliest pass. A
// non-string title with a missing recipe key is therefore a 400.
package drinks
