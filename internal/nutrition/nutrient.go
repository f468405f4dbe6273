// SPDX-License-Identifier: Apache-2.0

package nutrition

// Macro is one of the three macronutrients tracked as a dedicated field.
type Macro string

const (
	MacroCarb    Macro = "carb"
	MacroFat     Macro = "fat"
	MacroProtein Macro = "protein"
)

// Macros lists the macros in display order.
var Macros = []Macro{MacroCarb, MacroFat, MacroProtein}

// NutrientType identifies a micronutrient row.
type NutrientType string

const (
	NutrientSaturatedFat       NutrientType = "saturated_fat"
	NutrientMonounsaturatedFat NutrientType = "monounsaturated_fat"
	NutrientPolyunsaturatedFat NutrientType = "polyunsaturated_fat"
	NutrientTransFat           NutrientType = "trans_fat"
	NutrientCholesterol        NutrientType = "cholesterol"
	NutrientDietaryFiber       NutrientType = "dietary_fiber"
	NutrientSugars             NutrientType = "sugars"
	NutrientAddedSugars        NutrientType = "added_sugars"
	NutrientSugarAlcohols      NutrientType = "sugar_alcohols"
	NutrientSodium             NutrientType = "sodium"
	NutrientSalt               NutrientType = "salt"
	NutrientCalcium            NutrientType = "calcium"
	NutrientIron               NutrientType = "iron"
	NutrientPotassium          NutrientType = "potassium"
	NutrientMagnesium          NutrientType = "magnesium"
	NutrientZinc               NutrientType = "zinc"
	NutrientPhosphorus         NutrientType = "phosphorus"
	NutrientVitaminA           NutrientType = "vitamin_a"
	NutrientVitaminC           NutrientType = "vitamin_c"
	NutrientVitaminD           NutrientType = "vitamin_d"
	NutrientVitaminE           NutrientType = "vitamin_e"
	NutrientVitaminK           NutrientType = "vitamin_k"
	NutrientVitaminB6          NutrientType = "vitamin_b6"
	NutrientVitaminB12         NutrientType = "vitamin_b12"
	NutrientFolate             NutrientType = "folate"
	NutrientCaffeine           NutrientType = "caffeine"
)

// Category groups nutrient fields for presentation.
type Category string

const (
	CategoryFats     Category = "fats"
	CategoryFibers   Category = "fibers_and_sugars"
	CategoryMinerals Category = "minerals"
	CategoryVitamins Category = "vitamins"
	CategoryMisc     Category = "misc"
)

// Categories lists the categories in display order.
var Categories = []Category{CategoryFats, CategoryFibers, CategoryMinerals, CategoryVitamins, CategoryMisc}

type nutrientInfo struct {
	category    Category
	defaultUnit Unit
	units       []Unit
}

var nutrientTable = map[NutrientType]nutrientInfo{
	NutrientSaturatedFat:       {CategoryFats, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientMonounsaturatedFat: {CategoryFats, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientPolyunsaturatedFat: {CategoryFats, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientTransFat:           {CategoryFats, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientCholesterol:        {CategoryFats, UnitMilligram, []Unit{UnitMilligram, UnitGram}},
	NutrientDietaryFiber:       {CategoryFibers, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientSugars:             {CategoryFibers, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientAddedSugars:        {CategoryFibers, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientSugarAlcohols:      {CategoryFibers, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientSodium:             {CategoryMinerals, UnitMilligram, []Unit{UnitMilligram, UnitGram, UnitMicrogram}},
	NutrientSalt:               {CategoryMinerals, UnitGram, []Unit{UnitGram, UnitMilligram}},
	NutrientCalcium:            {CategoryMinerals, UnitMilligram, []Unit{UnitMilligram, UnitGram, UnitMicrogram, UnitPercent}},
	NutrientIron:               {CategoryMinerals, UnitMilligram, []Unit{UnitMilligram, UnitMicrogram, UnitPercent}},
	NutrientPotassium:          {CategoryMinerals, UnitMilligram, []Unit{UnitMilligram, UnitGram, UnitPercent}},
	NutrientMagnesium:          {CategoryMinerals, UnitMilligram, []Unit{UnitMilligram, UnitPercent}},
	NutrientZinc:               {CategoryMinerals, UnitMilligram, []Unit{UnitMilligram, UnitMicrogram, UnitPercent}},
	NutrientPhosphorus:         {CategoryMinerals, UnitMilligram, []Unit{UnitMilligram, UnitPercent}},
	NutrientVitaminA:           {CategoryVitamins, UnitMicrogram, []Unit{UnitMicrogram, UnitMilligram, UnitIU, UnitPercent}},
	NutrientVitaminC:           {CategoryVitamins, UnitMilligram, []Unit{UnitMilligram, UnitMicrogram, UnitPercent}},
	NutrientVitaminD:           {CategoryVitamins, UnitMicrogram, []Unit{UnitMicrogram, UnitIU, UnitPercent}},
	NutrientVitaminE:           {CategoryVitamins, UnitMilligram, []Unit{UnitMilligram, UnitIU, UnitPercent}},
	NutrientVitaminK:           {CategoryVitamins, UnitMicrogram, []Unit{UnitMicrogram, UnitPercent}},
	NutrientVitaminB6:          {CategoryVitamins, UnitMilligram, []Unit{UnitMilligram, UnitMicrogram, UnitPercent}},
	NutrientVitaminB12:         {CategoryVitamins, UnitMicrogram, []Unit{UnitMicrogram, UnitPercent}},
	NutrientFolate:             {CategoryVitamins, UnitMicrogram, []Unit{UnitMicrogram, UnitPercent}},
	NutrientCaffeine:           {CategoryMisc, UnitMilligram, []Unit{UnitMilligram, UnitGram}},
}

// IsKnown reports whether the nutrient type is part of the vocabulary.
func (n NutrientType) IsKnown() bool {
	_, ok := nutrientTable[n]
	return ok
}

func (n NutrientType) Category() Category {
	if info, ok := nutrientTable[n]; ok {
		return info.category
	}
	return CategoryMisc
}

// DefaultUnit is the unit assumed when a label value carries none.
func (n NutrientType) DefaultUnit() Unit {
	if info, ok := nutrientTable[n]; ok {
		return info.defaultUnit
	}
	return UnitGram
}

// SupportsUnit reports whether u is an acceptable unit for the nutrient.
func (n NutrientType) SupportsUnit(u Unit) bool {
	info, ok := nutrientTable[n]
	if !ok {
		return false
	}
	for _, candidate := range info.units {
		if candidate == u {
			return true
		}
	}
	return false
}

// ResolveUnit prefers the detected unit and falls back to the nutrient default.
func (n NutrientType) ResolveUnit(detected Unit) Unit {
	if detected != UnitNone && n.SupportsUnit(detected) {
		return detected
	}
	return n.DefaultUnit()
}
