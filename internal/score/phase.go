package score

// Project phase labels, ordered from least to most mature.
const (
	PhaseInitialSetup       = "Initial Setup"
	PhaseFoundationBuilding = "Foundation Building"
	PhaseCoreDevelopment    = "Core Development"
	PhaseIntegrationTesting = "Integration & Testing"
	PhaseBetaTesting        = "Beta Testing"
	PhaseProductionReady    = "Production Ready"
)

// PhaseSignals are the component-level predicates that gate the later
// phases beyond the raw overall score.
type PhaseSignals struct {
	// PrimaryServicesLive is true when every configured primary service
	// (typically backend and database) is at least listening.
	PrimaryServicesLive bool

	// TestFiles and TestThreshold gate the jump out of Beta Testing.
	TestFiles     int
	TestThreshold int
}

// Phase classifies the project into one ordinal phase. The function is
// pure and stateless: the same inputs always yield the same phase, and
// phase can move backward between cycles if evidence regresses.
func Phase(overall int, sig PhaseSignals) string {
	switch {
	case overall < 15:
		return PhaseInitialSetup
	case overall < 35:
		return PhaseFoundationBuilding
	case overall < 60:
		return PhaseCoreDevelopment
	case overall < 80 || !sig.PrimaryServicesLive:
		return PhaseIntegrationTesting
	case overall < 95 || sig.TestFiles < sig.TestThreshold:
		return PhaseBetaTesting
	default:
		return PhaseProductionReady
	}
}
