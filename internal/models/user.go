package models

// UserRole represents the roles carried in access tokens issued by the auth service.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleIQA      UserRole = "IQA"
	RoleAssessor UserRole = "ASSESSOR"
	RoleLearner  UserRole = "LEARNER"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleIQA, RoleAssessor, RoleLearner:
		return true
	}
	return false
}
