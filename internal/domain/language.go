package domain

type Language struct {
	Code         string
	Name         string
	NativeName   string
	IsRTL        bool
	IsActive     bool
	Completeness float64
}

// DefaultLanguages is the static language catalogue. Only Completeness
// changes at runtime, recomputed after a translation load.
func DefaultLanguages() []Language {
	return []Language{
		{Code: "en", Name: "English", NativeName: "English", IsActive: true, Completeness: 100},
		{Code: "sw", Name: "Swahili", NativeName: "Kiswahili", IsActive: true},
		{Code: "fr", Name: "French", NativeName: "Français", IsActive: true},
		{Code: "ar", Name: "Arabic", NativeName: "العربية", IsRTL: true, IsActive: true},
	}
}
