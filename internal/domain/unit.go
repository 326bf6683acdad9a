package domain

import "fmt"

// Unit is a recognized lead concentration unit.
type Unit int

const (
	// UnitMicrogramsPerLiter is the canonical unit, WQP code "ug/l".
	UnitMicrogramsPerLiter Unit = iota + 1
	// UnitMilligramsPerLiter is WQP code "mg/l", 1000x the canonical unit.
	UnitMilligramsPerLiter
)

// unitCodes maps WQP unit codes to units. Matching is exact and case-sensitive.
var unitCodes = map[string]Unit{
	"ug/l": UnitMicrogramsPerLiter,
	"mg/l": UnitMilligramsPerLiter,
}

// ugPerLiterFactor is the multiplier that converts each unit to ug/l.
var ugPerLiterFactor = map[Unit]float64{
	UnitMicrogramsPerLiter: 1,
	UnitMilligramsPerLiter: 1000,
}

// ParseUnit returns the Unit for a WQP unit code and whether it is recognized.
func ParseUnit(code string) (Unit, bool) {
	u, ok := unitCodes[code]
	return u, ok
}

// Code returns the WQP unit code.
func (u Unit) Code() string {
	switch u {
	case UnitMicrogramsPerLiter:
		return "ug/l"
	case UnitMilligramsPerLiter:
		return "mg/l"
	default:
		return ""
	}
}

func (u Unit) String() string {
	if c := u.Code(); c != "" {
		return c
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// NormalizeToUGL expresses value in micrograms per liter. It panics when u is
// not a recognized unit: FilterMeasurements guarantees callers only ever pass
// units produced by ParseUnit.
func NormalizeToUGL(value float64, u Unit) float64 {
	factor, ok := ugPerLiterFactor[u]
	if !ok {
		panic(fmt.Sprintf("domain: NormalizeToUGL called with unrecognized unit %v", u))
	}
	return value * factor
}
