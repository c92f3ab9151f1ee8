package auth

import "time"

// Permission is an entry of the token's "permissions" claim
type Permission string

const (
	PermissionGetDrinksDetail Permission = "get:drinks-detail"
	PermissionPostDrinks      Permission = "post:drinks"
	PermissionPatchDrinks     Permission = "patch:drinks"
	PermissionDeleteDrinks    Permission = "delete:drinks"
)

// Claims holds the validated claims of a bearer token
type Claims struct {
	Subject     string
	Issuer      string
	Audience    []string
	ExpiresAt   time.Time
	Permissions []Permission

	// Raw is the full decoded claim set
	Raw map[string]interface{}
}

// HasPermissionsClaim reports whether the token carried a permissions claim at all
func (c *Claims) HasPermissionsClaim() bool {
	if c == nil || c.Raw == nil {
		return false
	}
	_, ok := c.Raw["permissions"]
	return ok
}

// HasPermission checks if the token grants perm
func (c *Claims) HasPermission(perm Permission) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// permissionsFromClaim reads a permissions claim. Non-string entries and
// non-list values grant nothing.
func permissionsFromClaim(v interface{}) []Permission {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			perms = append(perms, Permission(s))
		}
	}
	return perms
}
