package probe

// Canonical product families reported in software records.
const (
	FamilyIDE            = "IDE"
	FamilyBrowser        = "Browser"
	FamilyVirtualization = "Virtualization"
	FamilyCommunication  = "Communication"
	FamilyLanguage       = "Programming Language"
	FamilyVersionControl = "Version Control"
	FamilyDatabase       = "Database"
	FamilyRuntime        = "Runtime"
	FamilyContainer      = "Container"
	FamilyCloudTools     = "Cloud Tools"
	FamilySecurity       = "Security"
	FamilyMonitoring     = "Monitoring"
	FamilyOther          = "Other"
	FamilyUnknown        = "Unknown"
)

var knownFamilies = map[string]string{
	FamilyIDE:            FamilyIDE,
	FamilyBrowser:        FamilyBrowser,
	FamilyVirtualization: FamilyVirtualization,
	FamilyCommunication:  FamilyCommunication,
	FamilyLanguage:       FamilyLanguage,
	FamilyVersionControl: FamilyVersionControl,
	FamilyDatabase:       FamilyDatabase,
	FamilyRuntime:        FamilyRuntime,
	FamilyContainer:      FamilyContainer,
	FamilyCloudTools:     FamilyCloudTools,
	FamilySecurity:       FamilySecurity,
	FamilyMonitoring:     FamilyMonitoring,
	FamilyOther:          FamilyOther,
	FamilyUnknown:        FamilyUnknown,
}

// NormalizeFamily maps a catalog family string onto the canonical
// vocabulary; anything unrecognized becomes "Other".
func NormalizeFamily(family string) string {
	if family == "" {
		return FamilyUnknown
	}
	if canonical, ok := knownFamilies[family]; ok {
		return canonical
	}
	return FamilyOther
}
