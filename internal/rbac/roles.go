package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleSchoolAdmin = "school_admin"
	RolePrincipal   = "principal"
	RoleStaff       = "staff"
	RoleAuditor     = "auditor"
	RoleSuperAdmin  = "super_admin"
	RolePlatformOps = "platform_ops" // hidden role
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RolePlatformOps }
