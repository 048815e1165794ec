package rbac

// Permissions used by the audit API.
const (
	PermAuditSelf        = "audit:self"        // audit your own registrar record
	PermAuditRun         = "audit:run"         // audit an uploaded transcript
	PermAuditAny         = "audit:any"         // audit any student's registrar record
	PermRequirementsView = "requirements:view" // browse programs and their requirements
	PermUsersManage      = "users:manage"
	PermChangePassword   = "user:change_password"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"student": {
		PermAuditSelf,
		PermRequirementsView,
		PermChangePassword,
	},
	"advisor": {
		"audit:*",
		PermRequirementsView,
		PermChangePassword,
	},
	"admin": {
		"*", // everything
	},
}
