// Package catalog holds the fixed product and package tables shown on the site.
package catalog

import (
	"strings"

	"gasper/internal/domain"
)

const (
	CategoryModule  = "module"
	CategoryPackage = "package"
)

var modules = []domain.Product{
	{
		ID: "route-optimizer", Category: CategoryModule, Name: "Route Optimizer",
		Summary: "Plans multi-stop delivery routes around site access windows.",
		Price:   149, Period: "month",
		Features: []string{"Multi-stop planning", "Access window constraints", "Driver hand-off sheets"},
	},
	{
		ID: "fleet-tracker", Category: CategoryModule, Name: "Fleet Tracker",
		Summary: "Live position and utilisation view for trucks and heavy plant.",
		Price:   99, Period: "month",
		Features: []string{"Live map", "Idle-time alerts", "Utilisation reports"},
	},
	{
		ID: "blueprint-analyzer", Category: CategoryModule, Name: "Blueprint Analyzer",
		Summary: "Extracts quantities and material lists from uploaded drawings.",
		Price:   249, Period: "month",
		Features: []string{"Quantity take-off", "Material lists", "Revision diffing"},
	},
	{
		ID: "cashflow-guardian", Category: CategoryModule, Name: "Cash Flow Guardian",
		Summary: "Forecasts project cash position from invoices and schedules.",
		Price:   179, Period: "month",
		Features: []string{"13-week forecast", "Retention tracking", "Late payment alerts"},
	},
	{
		ID: "site-scheduler", Category: CategoryModule, Name: "Site Scheduler",
		Summary: "Coordinates crews, deliveries and inspections on one calendar.",
		Price:   129, Period: "month",
		Features: []string{"Crew calendar", "Delivery slots", "Inspection reminders"},
	},
}

var packages = []domain.Product{
	{
		ID: "starter", Category: CategoryPackage, Name: "Starter",
		Summary: "Two modules for small contractors getting off spreadsheets.",
		Price:   199, Period: "month",
		Features: []string{"Route Optimizer", "Site Scheduler", "Email support"},
	},
	{
		ID: "growth", Category: CategoryPackage, Name: "Growth",
		Summary: "Operations bundle for regional builders and hauliers.",
		Price:   449, Period: "month", Badge: "Most popular",
		Features: []string{"Route Optimizer", "Fleet Tracker", "Site Scheduler", "Cash Flow Guardian", "Priority support"},
	},
	{
		ID: "enterprise", Category: CategoryPackage, Name: "Enterprise",
		Summary: "Every module, onboarding workshop and a named account manager.",
		Price:   899, Period: "month",
		Features: []string{"All modules", "Onboarding workshop", "Named account manager", "SSO"},
	},
	{
		ID: "onboarding-workshop", Category: CategoryPackage, Name: "Onboarding Workshop",
		Summary: "Half-day remote workshop to configure modules for your projects.",
		Price:   650, Period: "one-time",
	},
}

var byID = func() map[string]domain.Product {
	m := make(map[string]domain.Product, len(modules)+len(packages))
	for _, p := range modules {
		m[p.ID] = p
	}
	for _, p := range packages {
		m[p.ID] = p
	}
	return m
}()

// Modules returns a copy so callers cannot mutate the table.
func Modules() []domain.Product { return append([]domain.Product(nil), modules...) }

func Packages() []domain.Product { return append([]domain.Product(nil), packages...) }

func All() []domain.Product {
	out := make([]domain.Product, 0, len(modules)+len(packages))
	out = append(out, modules...)
	return append(out, packages...)
}

func Get(id string) (domain.Product, bool) {
	p, ok := byID[id]
	return p, ok
}

// Search matches q case-insensitively against name and summary.
func Search(q string) []domain.Product {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []domain.Product
	for _, p := range All() {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Summary), q) {
			out = append(out, p)
		}
	}
	return out
}
