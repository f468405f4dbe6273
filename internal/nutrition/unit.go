// SPDX-License-Identifier: Apache-2.0

package nutrition

import "strings"

// Unit is a measurement unit as it appears on a label or in a form field.
type Unit string

const (
	UnitNone Unit = ""

	UnitGram      Unit = "g"
	UnitMilligram Unit = "mg"
	UnitMicrogram Unit = "mcg"
	UnitKilogram  Unit = "kg"
	UnitOunce     Unit = "oz"
	UnitPound     Unit = "lb"

	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitCup        Unit = "cup"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitFluidOunce Unit = "floz"

	UnitKcal Unit = "kcal"
	UnitKJ   Unit = "kj"

	UnitIU      Unit = "iu"
	UnitPercent Unit = "%"

	UnitServing Unit = "serving"
)

// UnitType groups units that can be converted between each other.
type UnitType string

const (
	UnitTypeWeight UnitType = "weight"
	UnitTypeVolume UnitType = "volume"
	UnitTypeEnergy UnitType = "energy"
	UnitTypeOther  UnitType = "other"
)

// unitAliases maps label spellings onto canonical units.
var unitAliases = map[string]Unit{
	"g": UnitGram, "gram": UnitGram, "grams": UnitGram, "gr": UnitGram,
	"mg": UnitMilligram, "milligram": UnitMilligram, "milligrams": UnitMilligram,
	"mcg": UnitMicrogram, "µg": UnitMicrogram, "ug": UnitMicrogram, "microgram": UnitMicrogram,
	"kg": UnitKilogram, "kilogram": UnitKilogram,
	"oz": UnitOunce, "ounce": UnitOunce, "ounces": UnitOunce,
	"lb": UnitPound, "lbs": UnitPound, "pound": UnitPound,
	"ml": UnitMilliliter, "milliliter": UnitMilliliter, "millilitre": UnitMilliliter,
	"l": UnitLiter, "liter": UnitLiter, "litre": UnitLiter,
	"cup": UnitCup, "cups": UnitCup,
	"tbsp": UnitTablespoon, "tablespoon": UnitTablespoon, "tablespoons": UnitTablespoon,
	"tsp": UnitTeaspoon, "teaspoon": UnitTeaspoon, "teaspoons": UnitTeaspoon,
	"floz": UnitFluidOunce, "fl oz": UnitFluidOunce, "fl. oz": UnitFluidOunce,
	"kcal": UnitKcal, "cal": UnitKcal, "calories": UnitKcal,
	"kj": UnitKJ, "kilojoule": UnitKJ, "kilojoules": UnitKJ,
	"iu": UnitIU, "%": UnitPercent,
	"serving": UnitServing, "servings": UnitServing,
}

// ParseUnit resolves a label spelling to a Unit. Unknown spellings yield UnitNone.
func ParseUnit(s string) Unit {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := unitAliases[key]; ok {
		return u
	}
	return UnitNone
}

// Type reports which family the unit belongs to.
func (u Unit) Type() UnitType {
	switch u {
	case UnitGram, UnitMilligram, UnitMicrogram, UnitKilogram, UnitOunce, UnitPound:
		return UnitTypeWeight
	case UnitMilliliter, UnitLiter, UnitCup, UnitTablespoon, UnitTeaspoon, UnitFluidOunce:
		return UnitTypeVolume
	case UnitKcal, UnitKJ:
		return UnitTypeEnergy
	default:
		return UnitTypeOther
	}
}

func (u Unit) IsWeight() bool { return u.Type() == UnitTypeWeight }
func (u Unit) IsVolume() bool { return u.Type() == UnitTypeVolume }
func (u Unit) IsEnergy() bool { return u.Type() == UnitTypeEnergy }

// LabelValue is a raw numeric value as detected on a label, e.g. "250 kcal".
type LabelValue struct {
	Amount float64 `json:"amount" yaml:"amount"`
	Unit   Unit    `json:"unit,omitempty" yaml:"unit,omitempty"`
}
