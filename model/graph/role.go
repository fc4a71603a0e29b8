package graph

import "fmt"

// Role identifies the worker capability a task requires. The set is closed;
// adding a role means extending the constants below and every exhaustive
// switch over them.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleResearcher  Role = "researcher"
	RoleAnalyst     Role = "analyst"
	RoleExecutor    Role = "executor"
	RoleValidator   Role = "validator"
)

// Roles returns all recognized roles in declaration order.
func Roles() []Role {
	return []Role{RoleCoordinator, RoleResearcher, RoleAnalyst, RoleExecutor, RoleValidator}
}

// ParseRole converts a raw capability name into a Role.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleCoordinator, RoleResearcher, RoleAnalyst, RoleExecutor, RoleValidator:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}

// IsValid reports whether the role belongs to the recognized capability set.
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
