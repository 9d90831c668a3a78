package domain

// LookupKind names a support table used to populate form choices.
type LookupKind string

const (
	LookupLanguage        LookupKind = "language"
	LookupCallCenter      LookupKind = "call_center"
	LookupAreaOfExpertise LookupKind = "area_of_expertise"
	LookupCityTown        LookupKind = "city_town"
	LookupInstitution     LookupKind = "institution"
	LookupCareer          LookupKind = "career"
	LookupShift           LookupKind = "shift"
)

// LookupKinds returns every supported kind.
func LookupKinds() []LookupKind {
	return []LookupKind{
		LookupLanguage, LookupCallCenter, LookupAreaOfExpertise, LookupCityTown,
		LookupInstitution, LookupCareer, LookupShift,
	}
}

// Valid reports whether k is supported.
func (k LookupKind) Valid() bool {
	for _, known := range LookupKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// LookupItem is a row of a support table. Only items with DisplayInForm are offered on the intake form.
type LookupItem struct {
	ID            string
	Kind          LookupKind
	Name          string
	ShortName     string
	DisplayInForm bool
}
