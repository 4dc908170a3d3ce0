package authz

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Permission is an atomic capability token from the closed catalog.
type Permission string

// PermAll is the wildcard permission meaning every permission in the catalog.
const PermAll Permission = "ALL"

// Permission tokens grouped by concern.
const (
	PermSystemAdmin    Permission = "system.admin"
	PermSystemSettings Permission = "system.settings"

	PermUserCreate Permission = "user.create"
	PermUserRead   Permission = "user.read"
	PermUserUpdate Permission = "user.update"
	PermUserDelete Permission = "user.delete"
	PermUserInvite Permission = "user.invite"

	PermCompanyCreate Permission = "company.create"
	PermCompanyRead   Permission = "company.read"
	PermCompanyUpdate Permission = "company.update"
	PermCompanyDelete Permission = "company.delete"

	PermPortfolioCreate Permission = "portfolio.create"
	PermPortfolioRead   Permission = "portfolio.read"
	PermPortfolioUpdate Permission = "portfolio.update"
	PermPortfolioDelete Permission = "portfolio.delete"
	PermPortfolioAssign Permission = "portfolio.assign"

	PermPropertyCreate Permission = "property.create"
	PermPropertyRead   Permission = "property.read"
	PermPropertyUpdate Permission = "property.update"
	PermPropertyDelete Permission = "property.delete"
	PermPropertyAssign Permission = "property.assign"

	PermTenantCreate Permission = "tenant.create"
	PermTenantRead   Permission = "tenant.read"
	PermTenantUpdate Permission = "tenant.update"
	PermTenantDelete Permission = "tenant.delete"

	PermMaintenanceCreate Permission = "maintenance.create"
	PermMaintenanceRead   Permission = "maintenance.read"
	PermMaintenanceUpdate Permission = "maintenance.update"

	PermFinancialRead   Permission = "financial.read"
	PermFinancialManage Permission = "financial.manage"
	PermPaymentProcess  Permission = "payment.process"

	PermMessageSend      Permission = "message.send"
	PermNotificationSend Permission = "notification.send"

	PermReportGenerate Permission = "report.generate"
	PermReportRead     Permission = "report.read"

	PermSettingsRead   Permission = "settings.read"
	PermSettingsUpdate Permission = "settings.update"
)

// Category groups permissions for presentation and audit output.
// Categories never participate in authorization evaluation.
type Category string

const (
	CategorySystem      Category = "system"
	CategoryUserMgmt    Category = "user_management"
	CategoryPropertyMgmt Category = "property_management"
	CategoryTenantMgmt  Category = "tenant_management"
	CategoryMaintenance Category = "maintenance_management"
	CategoryFinancial   Category = "financial_management"
	CategoryCommunication Category = "communication"
	CategoryReporting   Category = "reporting"
	CategorySettings    Category = "settings"
)

type catalogEntry struct {
	description string
	category    Category
}

var catalog = map[Permission]catalogEntry{
	PermSystemAdmin:    {"Full system administration", CategorySystem},
	PermSystemSettings: {"Manage system settings", CategorySystem},

	PermUserCreate: {"Create user accounts", CategoryUserMgmt},
	PermUserRead:   {"View user accounts", CategoryUserMgmt},
	PermUserUpdate: {"Update user accounts", CategoryUserMgmt},
	PermUserDelete: {"Deactivate user accounts", CategoryUserMgmt},
	PermUserInvite: {"Invite users to the platform", CategoryUserMgmt},

	PermCompanyCreate: {"Create companies", CategoryPropertyMgmt},
	PermCompanyRead:   {"View company information", CategoryPropertyMgmt},
	PermCompanyUpdate: {"Update company settings", CategoryPropertyMgmt},
	PermCompanyDelete: {"Archive companies", CategoryPropertyMgmt},

	PermPortfolioCreate: {"Create portfolios", CategoryPropertyMgmt},
	PermPortfolioRead:   {"View portfolios", CategoryPropertyMgmt},
	PermPortfolioUpdate: {"Update portfolios", CategoryPropertyMgmt},
	PermPortfolioDelete: {"Archive portfolios", CategoryPropertyMgmt},
	PermPortfolioAssign: {"Assign team members to portfolios", CategoryPropertyMgmt},

	PermPropertyCreate: {"Create properties", CategoryPropertyMgmt},
	PermPropertyRead:   {"View properties", CategoryPropertyMgmt},
	PermPropertyUpdate: {"Update properties", CategoryPropertyMgmt},
	PermPropertyDelete: {"Archive properties", CategoryPropertyMgmt},
	PermPropertyAssign: {"Assign team members to properties", CategoryPropertyMgmt},

	PermTenantCreate: {"Create tenant records", CategoryTenantMgmt},
	PermTenantRead:   {"View tenant records", CategoryTenantMgmt},
	PermTenantUpdate: {"Update tenant records", CategoryTenantMgmt},
	PermTenantDelete: {"Remove tenant records", CategoryTenantMgmt},

	PermMaintenanceCreate: {"Create maintenance requests", CategoryMaintenance},
	PermMaintenanceRead:   {"View maintenance requests", CategoryMaintenance},
	PermMaintenanceUpdate: {"Update maintenance requests", CategoryMaintenance},

	PermFinancialRead:   {"View financial data", CategoryFinancial},
	PermFinancialManage: {"Manage financial data", CategoryFinancial},
	PermPaymentProcess:  {"Process payments", CategoryFinancial},

	PermMessageSend:      {"Send messages", CategoryCommunication},
	PermNotificationSend: {"Send notifications", CategoryCommunication},

	PermReportGenerate: {"Generate reports", CategoryReporting},
	PermReportRead:     {"View reports", CategoryReporting},

	PermSettingsRead:   {"View settings", CategorySettings},
	PermSettingsUpdate: {"Update settings", CategorySettings},
}

// Known reports whether the permission exists in the catalog.
// The wildcard is not itself a catalog entry.
func Known(p Permission) bool {
	_, ok := catalog[p]
	return ok
}

// Describe returns the human description for a permission, or an empty
// string for unknown tokens.
func Describe(p Permission) string {
	return catalog[p].description
}

// CategoryOf returns the presentation category for a permission.
func CategoryOf(p Permission) Category {
	return catalog[p].category
}

// Permissions returns every catalog token. The order is unspecified.
func Permissions() []Permission {
	out := make([]Permission, 0, len(catalog))
	for p := range catalog {
		out = append(out, p)
	}
	return out
}

// PermissionsInCategory returns the catalog tokens belonging to a category.
func PermissionsInCategory(c Category) []Permission {
	var out []Permission
	for p, entry := range catalog {
		if entry.category == c {
			out = append(out, p)
		}
	}
	return out
}

var titleCaser = cases.Title(language.English)

// CategoryDisplayName renders a category for UI and report output.
func CategoryDisplayName(c Category) string {
	return titleCaser.String(strings.ReplaceAll(string(c), "_", " "))
}
