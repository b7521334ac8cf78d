package core

import (
	"fmt"
	"strings"
)

// Category is a topical tag drawn from a closed set. Documents tagged with
// anything else are never selected by routing.
type Category string

const (
	CategoryAdministration         Category = "administration"
	CategoryEligibility            Category = "eligibility"
	CategoryFinancial              Category = "financial"
	CategoryHealthServices         Category = "health-services"
	CategoryProviderAdministration Category = "provider-administration"
	CategoryMemberServices         Category = "member-services"
	CategoryUtilizationManagement  Category = "utilization-management"
	CategoryQualityImprovement     Category = "quality-improvement"
	CategoryPharmacy               Category = "pharmacy"
	CategoryBehavioralHealth       Category = "behavioral-health"
	CategoryCompliance             Category = "compliance"
	CategoryCredentialing          Category = "credentialing"
)

var categories = []Category{
	CategoryAdministration,
	CategoryEligibility,
	CategoryFinancial,
	CategoryHealthServices,
	CategoryProviderAdministration,
	CategoryMemberServices,
	CategoryUtilizationManagement,
	CategoryQualityImprovement,
	CategoryPharmacy,
	CategoryBehavioralHealth,
	CategoryCompliance,
	CategoryCredentialing,
}

// DefaultCategories is the broad subset searched when routing fails.
var DefaultCategories = []Category{
	CategoryAdministration,
	CategoryHealthServices,
	CategoryUtilizationManagement,
}

// Categories returns every known category in canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory normalizes a tag and checks it against the known set.
// "Health Services" and "health_services" both parse to CategoryHealthServices.
func ParseCategory(s string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	c := Category(normalized)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
