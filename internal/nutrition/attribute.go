// SPDX-License-Identifier: Apache-2.0

package nutrition

import (
	"strings"
)

// Attribute identifies a row of a nutrition label.
type Attribute string

const (
	AttributeEnergy       Attribute = "energy"
	AttributeCarbohydrate Attribute = "carbohydrate"
	AttributeFat          Attribute = "fat"
	AttributeProtein      Attribute = "protein"
)

// NutrientAttribute returns the row attribute for a micronutrient.
func NutrientAttribute(n NutrientType) Attribute {
	return Attribute(n)
}

// Macro returns the macro the attribute describes, if any.
func (a Attribute) Macro() (Macro, bool) {
	switch a {
	case AttributeCarbohydrate:
		return MacroCarb, true
	case AttributeFat:
		return MacroFat, true
	case AttributeProtein:
		return MacroProtein, true
	}
	return "", false
}

// NutrientType returns the micronutrient the attribute describes, if any.
func (a Attribute) NutrientType() (NutrientType, bool) {
	n := NutrientType(a)
	if n.IsKnown() {
		return n, true
	}
	return "", false
}

// MacroAttribute is the inverse of Attribute.Macro.
func MacroAttribute(m Macro) Attribute {
	switch m {
	case MacroCarb:
		return AttributeCarbohydrate
	case MacroFat:
		return AttributeFat
	default:
		return AttributeProtein
	}
}

// attributeRule maps a set of trigger keywords to a label attribute.
type attributeRule struct {
	keywords  []string
	attribute Attribute
}

// attributeRules is the keyword-to-attribute table used by ParseAttribute.
// Rules are evaluated in order; the first match wins, so more specific labels
// ("saturated fat") precede generic ones ("fat").
var attributeRules = []attributeRule{
	{keywords: []string{"energy", "calories", "kcal", "kilojoules"}, attribute: AttributeEnergy},
	{keywords: []string{"saturated", "saturates"}, attribute: NutrientAttribute(NutrientSaturatedFat)},
	{keywords: []string{"monounsaturated", "mono-unsaturates"}, attribute: NutrientAttribute(NutrientMonounsaturatedFat)},
	{keywords: []string{"polyunsaturated", "polyunsaturates"}, attribute: NutrientAttribute(NutrientPolyunsaturatedFat)},
	{keywords: []string{"trans fat", "trans"}, attribute: NutrientAttribute(NutrientTransFat)},
	{keywords: []string{"cholesterol"}, attribute: NutrientAttribute(NutrientCholesterol)},
	{keywords: []string{"fibre", "fiber"}, attribute: NutrientAttribute(NutrientDietaryFiber)},
	{keywords: []string{"added sugar", "includes"}, attribute: NutrientAttribute(NutrientAddedSugars)},
	{keywords: []string{"sugar alcohol", "polyols"}, attribute: NutrientAttribute(NutrientSugarAlcohols)},
	{keywords: []string{"sugar"}, attribute: NutrientAttribute(NutrientSugars)},
	{keywords: []string{"carbohydrate", "carbs", "carb"}, attribute: AttributeCarbohydrate},
	{keywords: []string{"fat", "lipid"}, attribute: AttributeFat},
	{keywords: []string{"protein"}, attribute: AttributeProtein},
	{keywords: []string{"sodium"}, attribute: NutrientAttribute(NutrientSodium)},
	{keywords: []string{"salt"}, attribute: NutrientAttribute(NutrientSalt)},
	{keywords: []string{"calcium"}, attribute: NutrientAttribute(NutrientCalcium)},
	{keywords: []string{"iron"}, attribute: NutrientAttribute(NutrientIron)},
	{keywords: []string{"potassium"}, attribute: NutrientAttribute(NutrientPotassium)},
	{keywords: []string{"magnesium"}, attribute: NutrientAttribute(NutrientMagnesium)},
	{keywords: []string{"zinc"}, attribute: NutrientAttribute(NutrientZinc)},
	{keywords: []string{"phosphorus"}, attribute: NutrientAttribute(NutrientPhosphorus)},
	{keywords: []string{"vitamin a"}, attribute: NutrientAttribute(NutrientVitaminA)},
	{keywords: []string{"vitamin c", "ascorbic"}, attribute: NutrientAttribute(NutrientVitaminC)},
	{keywords: []string{"vitamin d"}, attribute: NutrientAttribute(NutrientVitaminD)},
	{keywords: []string{"vitamin e"}, attribute: NutrientAttribute(NutrientVitaminE)},
	{keywords: []string{"vitamin k"}, attribute: NutrientAttribute(NutrientVitaminK)},
	{keywords: []string{"vitamin b6", "pyridoxine"}, attribute: NutrientAttribute(NutrientVitaminB6)},
	{keywords: []string{"vitamin b12", "cobalamin"}, attribute: NutrientAttribute(NutrientVitaminB12)},
	{keywords: []string{"folate", "folic"}, attribute: NutrientAttribute(NutrientFolate)},
	{keywords: []string{"caffeine"}, attribute: NutrientAttribute(NutrientCaffeine)},
}

// ParseAttribute maps label text such as "Total Fat" or "Calories" to an
// Attribute. Canonical attribute names are accepted as-is.
func ParseAttribute(label string) (Attribute, bool) {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return "", false
	}
	if a := Attribute(lower); a.isCanonical() {
		return a, true
	}
	for _, rule := range attributeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.attribute, true
			}
		}
	}
	return "", false
}

func (a Attribute) isCanonical() bool {
	switch a {
	case AttributeEnergy, AttributeCarbohydrate, AttributeFat, AttributeProtein:
		return true
	}
	_, ok := a.NutrientType()
	return ok
}
