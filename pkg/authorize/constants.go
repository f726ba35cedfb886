package authorize

type Action string
type Resource string
type Role string
type PolicyEffect string

const (
	ActionCreate   Action = "create"
	ActionRequest  Action = "request"
	ActionRead     Action = "read"
	ActionList     Action = "list"
	ActionUpdate   Action = "update"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionExecute  Action = "execute" // run, trigger
	ActionManage   Action = "manage"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRequest: {}, ActionRead: {}, ActionList: {}, ActionUpdate: {},
	ActionApprove: {}, ActionReject: {}, ActionComplete: {}, ActionCancel: {},
	ActionExecute: {}, ActionManage: {},
}

const (
	ResourceAppointment Resource = "appointment"
	ResourceSchedule    Resource = "schedule"
	ResourceReminder    Resource = "reminder"
	ResourceIntegration Resource = "integration"

	WildcardResource Resource = "*"
)

var KnownResources = map[Resource]struct{}{
	ResourceAppointment: {}, ResourceSchedule: {}, ResourceReminder: {}, ResourceIntegration: {},
}

// Roles match the role claim carried by access tokens.
const (
	RolePatient      Role = "patient"
	RoleNutritionist Role = "nutritionist"
	RoleAdmin        Role = "admin"
)

var KnownRoles = map[Role]struct{}{
	RolePatient: {}, RoleNutritionist: {}, RoleAdmin: {},
}

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PermissionPolicy is one p line: role, resource, action, effect.
type PermissionPolicy struct {
	Role     Role
	Resource Resource
	Action   Action
	Effect   PolicyEffect
}

// DefaultPolicies grants each role its API surface. Participant checks
// (is this my appointment?) are made by the services, not here.
var DefaultPolicies = []PermissionPolicy{
	{RolePatient, ResourceAppointment, ActionRequest, EffectAllow},
	{RolePatient, ResourceAppointment, ActionRead, EffectAllow},
	{RolePatient, ResourceAppointment, ActionList, EffectAllow},
	{RolePatient, ResourceAppointment, ActionCancel, EffectAllow},
	{RolePatient, ResourceIntegration, ActionRead, EffectAllow},

	{RoleNutritionist, ResourceAppointment, ActionCreate, EffectAllow},
	{RoleNutritionist, ResourceAppointment, ActionRead, EffectAllow},
	{RoleNutritionist, ResourceAppointment, ActionList, EffectAllow},
	{RoleNutritionist, ResourceAppointment, ActionUpdate, EffectAllow},
	{RoleNutritionist, ResourceAppointment, ActionApprove, EffectAllow},
	{RoleNutritionist, ResourceAppointment, ActionReject, EffectAllow},
	{RoleNutritionist, ResourceAppointment, ActionComplete, EffectAllow},
	{RoleNutritionist, ResourceAppointment, ActionCancel, EffectAllow},
	{RoleNutritionist, ResourceSchedule, ActionRead, EffectAllow},
	{RoleNutritionist, ResourceIntegration, ActionRead, EffectAllow},

	// Only patients book through the request flow.
	{RoleAdmin, ResourceAppointment, ActionRequest, EffectDeny},
	{RoleAdmin, WildcardResource, WildcardAction, EffectAllow},
}
