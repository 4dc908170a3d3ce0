package authz

import "strings"

// Role names the fixed set of platform roles.
type Role string

const (
	RoleSystemAdmin           Role = "system_admin"
	RoleCompanyAdmin          Role = "company_admin"
	RoleCompanyOwner          Role = "company_owner"
	RolePortfolioManager      Role = "portfolio_manager"
	RolePropertyManager       Role = "property_manager"
	RoleFinancialController   Role = "financial_controller"
	RoleMaintenanceSupervisor Role = "maintenance_supervisor"
	RoleLeasingSpecialist     Role = "leasing_specialist"
	RoleMarketingSpecialist   Role = "marketing_specialist"
	RoleLandlord              Role = "landlord"
	RoleAccountant            Role = "accountant"
	RoleInspector             Role = "inspector"
	RoleVendor                Role = "vendor"
	RoleTenant                Role = "tenant"
	RoleGuest                 Role = "guest"
)

// rankUnknown orders unrecognised roles below every registered role.
const rankUnknown = 99

// Ranks are informational ordering for escalation UI. 1 is the highest
// authority. Ranks never derive permissions.
var roleRanks = map[Role]int{
	RoleSystemAdmin:           1,
	RoleCompanyAdmin:          2,
	RoleCompanyOwner:          3,
	RolePortfolioManager:      4,
	RolePropertyManager:       5,
	RoleFinancialController:   6,
	RoleMaintenanceSupervisor: 7,
	RoleLeasingSpecialist:     8,
	RoleMarketingSpecialist:   9,
	RoleLandlord:              10,
	RoleAccountant:            11,
	RoleInspector:             12,
	RoleVendor:                13,
	RoleTenant:                14,
	RoleGuest:                 15,
}

var rolePermissions = map[Role][]Permission{
	RoleSystemAdmin: {PermAll},
	RoleCompanyAdmin: {
		PermCompanyRead, PermCompanyUpdate,
		PermPortfolioCreate, PermPortfolioRead, PermPortfolioUpdate, PermPortfolioDelete, PermPortfolioAssign,
		PermPropertyCreate, PermPropertyRead, PermPropertyUpdate, PermPropertyDelete, PermPropertyAssign,
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete, PermUserInvite,
		PermTenantCreate, PermTenantRead, PermTenantUpdate, PermTenantDelete,
		PermMaintenanceCreate, PermMaintenanceRead, PermMaintenanceUpdate,
		PermFinancialRead, PermFinancialManage, PermPaymentProcess,
		PermMessageSend, PermNotificationSend,
		PermReportGenerate, PermReportRead,
		PermSettingsRead, PermSettingsUpdate,
	},
	RoleCompanyOwner: {
		PermCompanyRead, PermCompanyUpdate,
		PermPortfolioRead, PermPropertyRead,
		PermUserRead, PermUserInvite,
		PermFinancialRead, PermReportGenerate, PermReportRead,
		PermSettingsRead,
	},
	RolePortfolioManager: {
		PermPortfolioRead, PermPortfolioUpdate, PermPortfolioAssign,
		PermPropertyCreate, PermPropertyRead, PermPropertyUpdate, PermPropertyAssign,
		PermUserRead,
		PermTenantCreate, PermTenantRead, PermTenantUpdate,
		PermMaintenanceCreate, PermMaintenanceRead, PermMaintenanceUpdate,
		PermFinancialRead,
		PermMessageSend, PermReportGenerate, PermReportRead,
	},
	RolePropertyManager: {
		PermPropertyRead, PermPropertyUpdate, PermPropertyAssign,
		PermUserRead,
		PermTenantCreate, PermTenantRead, PermTenantUpdate,
		PermMaintenanceCreate, PermMaintenanceRead, PermMaintenanceUpdate,
		PermMessageSend, PermReportRead,
	},
	RoleFinancialController: {
		PermFinancialRead, PermFinancialManage, PermPaymentProcess,
		PermReportGenerate, PermReportRead,
	},
	RoleMaintenanceSupervisor: {
		PermPropertyRead,
		PermMaintenanceCreate, PermMaintenanceRead, PermMaintenanceUpdate,
		PermMessageSend,
	},
	RoleLeasingSpecialist: {
		PermPropertyRead,
		PermTenantCreate, PermTenantRead, PermTenantUpdate,
		PermMessageSend,
	},
	RoleMarketingSpecialist: {
		PermPropertyRead,
		PermMessageSend, PermNotificationSend,
	},
	RoleLandlord: {
		PermPropertyRead, PermPropertyUpdate,
		PermTenantRead, PermFinancialRead,
		PermMaintenanceCreate, PermMaintenanceRead,
		PermMessageSend,
	},
	RoleAccountant: {
		PermFinancialRead, PermReportRead,
	},
	RoleInspector: {
		PermPropertyRead, PermMaintenanceRead,
	},
	RoleVendor: {
		PermMaintenanceRead, PermMaintenanceUpdate,
	},
	RoleTenant: {
		PermMaintenanceCreate, PermMessageSend, PermSettingsRead,
	},
	RoleGuest: {},
}

// KnownRole reports whether the role is part of the fixed enumeration.
func KnownRole(r Role) bool {
	_, ok := roleRanks[r]
	return ok
}

// DefaultPermissions returns a copy of the role's default permission set.
// Unknown roles yield an empty set.
func DefaultPermissions(r Role) []Permission {
	perms := rolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Rank returns the role's authority rank. 1 is the highest authority;
// unknown roles rank below every registered role.
func Rank(r Role) int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return rankUnknown
}

// Outranks reports whether role a carries strictly more authority than b.
// Used for escalation ordering only, never for permission derivation.
func Outranks(a, b Role) bool {
	return Rank(a) < Rank(b)
}

// HighestRank returns the best (numerically lowest) rank held by a principal.
func HighestRank(p Principal) int {
	best := rankUnknown
	for _, r := range p.Roles {
		if rank := Rank(r); rank < best {
			best = rank
		}
	}
	return best
}

// RoleDisplayName renders a role name for UI output.
func RoleDisplayName(r Role) string {
	return titleCaser.String(strings.ReplaceAll(string(r), "_", " "))
}

// Roles returns the full role enumeration ordered by rank.
func Roles() []Role {
	return []Role{
		RoleSystemAdmin,
		RoleCompanyAdmin,
		RoleCompanyOwner,
		RolePortfolioManager,
		RolePropertyManager,
		RoleFinancialController,
		RoleMaintenanceSupervisor,
		RoleLeasingSpecialist,
		RoleMarketingSpecialist,
		RoleLandlord,
		RoleAccountant,
		RoleInspector,
		RoleVendor,
		RoleTenant,
		RoleGuest,
	}
}
