package calculator

import "solar-sizer/domain"

type SystemType string

const (
	SystemFullSolar  SystemType = "full_solar"
	SystemHybrid     SystemType = "hybrid"
	SystemBackup     SystemType = "backup"
	SystemPortable   SystemType = "portable"
	SystemIntegrated SystemType = "integrated" // reserved; no rule emits it yet
)

// Classification is the chosen system type with the reasoning shown to the user.
type Classification struct {
	Type          SystemType `json:"type"`
	Rationale     string     `json:"rationale"`
	Configuration string     `json:"configuration"`
}

const (
	fullSolarBelowGridHours = 8.0
	backupAboveGridHours    = 16.0
	householdBackupAbove    = 12.0
)

// Classify picks the system type. Rules are evaluated in order and the
// first match wins.
func Classify(gridHours float64, usage domain.UsageType, dualUse bool) Classification {
	switch {
	case dualUse:
		return Classification{
			Type:          SystemPortable,
			Rationale:     "A portable system gives you the flexibility to move power between your two premises.",
			Configuration: "portable setup with wheeled mounting",
		}
	case gridHours < fullSolarBelowGridHours:
		return Classification{
			Type:          SystemFullSolar,
			Rationale:     "Grid availability is very limited, so solar should carry your full load.",
			Configuration: "complete solar installation with extended battery backup",
		}
	case gridHours <= backupAboveGridHours:
		if usage == domain.UsageBusiness {
			return Classification{
				Type:          SystemHybrid,
				Rationale:     "A grid-interactive hybrid system keeps your business running through outages.",
				Configuration: "grid-tied hybrid inverter with battery storage",
			}
		}
		if gridHours > householdBackupAbove {
			return Classification{
				Type:          SystemBackup,
				Rationale:     "The grid is reliable enough that a backup-only system is the most cost-effective choice.",
				Configuration: "battery backup system with solar charging",
			}
		}
		return Classification{
			Type:          SystemHybrid,
			Rationale:     "Moderate grid availability suits a hybrid system that blends grid and solar power.",
			Configuration: "grid-tied hybrid inverter with battery storage",
		}
	default:
		return Classification{
			Type:          SystemBackup,
			Rationale:     "Grid availability is good, so a backup system covers the remaining outages.",
			Configuration: "battery backup system with solar charging",
		}
	}
}
