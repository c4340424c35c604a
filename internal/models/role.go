package models

// Role is a fixed account category. Roles are assigned at signup and never
// change afterwards; there is no role-mutation endpoint.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProducer  Role = "producer"
	RoleVerifier  Role = "verifier"
	RoleBuyer     Role = "buyer"
	RoleRegulator Role = "regulator"
)

// AllRoles lists every valid role.
var AllRoles = []Role{RoleAdmin, RoleProducer, RoleVerifier, RoleBuyer, RoleRegulator}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IndustryTypes enumerates the accepted buyer industry classifications.
var IndustryTypes = []string{"steel", "ammonia", "transport", "chemical", "other"}

// ValidIndustryType reports whether v is an accepted industry type.
func ValidIndustryType(v string) bool {
	for _, known := range IndustryTypes {
		if v == known {
			return true
		}
	}
	return false
}

// ResourceRoles is the static capability table consulted by the
// authorization layer: resource name to the roles allowed to access it.
// Adding a role to a resource is a data edit here, not a code change.
var ResourceRoles = map[string][]Role{
	"facilities":    {RoleProducer},
	"verifications": {RoleVerifier},
	"marketplace":   {RoleBuyer},
	"audit":         {RoleRegulator},
	"users":         {RoleAdmin},
}
