package constants

// Coastal ecosystem types eligible for registration.
const (
	EcosystemMangrove       = "mangrove"
	EcosystemSaltmarsh      = "saltmarsh"
	EcosystemSeagrass       = "seagrass"
	EcosystemCoastalWetland = "coastal_wetland"
)

// ValidEcosystems is the fixed enumeration checked at project creation.
var ValidEcosystems = []string{
	EcosystemMangrove,
	EcosystemSaltmarsh,
	EcosystemSeagrass,
	EcosystemCoastalWetland,
}

// IsValidEcosystem returns true if t is in the fixed enumeration.
func IsValidEcosystem(t string) bool {
	for _, e := range ValidEcosystems {
		if e == t {
			return true
		}
	}
	return false
}
