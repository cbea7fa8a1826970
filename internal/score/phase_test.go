package score

import "testing"

func TestPhase(t *testing.T) {
	live := PhaseSignals{PrimaryServicesLive: true, TestFiles: 30, TestThreshold: 25}
	dead := PhaseSignals{PrimaryServicesLive: false, TestFiles: 30, TestThreshold: 25}
	untested := PhaseSignals{PrimaryServicesLive: true, TestFiles: 5, TestThreshold: 25}

	tests := []struct {
		name    string
		overall int
		sig     PhaseSignals
		want    string
	}{
		{"nothing built", 0, dead, PhaseInitialSetup},
		{"just started", 14, live, PhaseInitialSetup},
		{"foundation", 20, live, PhaseFoundationBuilding},
		{"core dev", 45, live, PhaseCoreDevelopment},
		{"integration by score", 70, live, PhaseIntegrationTesting},
		{"high score but services down", 90, dead, PhaseIntegrationTesting},
		{"beta by score", 85, live, PhaseBetaTesting},
		{"high score but tests thin", 98, untested, PhaseBetaTesting},
		{"production ready", 97, live, PhaseProductionReady},
		{"perfect", 100, live, PhaseProductionReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Phase(tt.overall, tt.sig); got != tt.want {
				t.Errorf("Phase(%d) = %q, want %q", tt.overall, got, tt.want)
			}
		})
	}
}

func TestPhase_IsStateless(t *testing.T) {
	// Phase can move backward between cycles; the classifier keeps no
	// previous-phase state.
	sig := PhaseSignals{PrimaryServicesLive: true, TestFiles: 30, TestThreshold: 25}
	first := Phase(97, sig)
	second := Phase(40, sig)
	third := Phase(97, sig)

	if first != PhaseProductionReady || third != PhaseProductionReady {
		t.Errorf("same inputs must yield same phase: %q vs %q", first, third)
	}
	if second != PhaseCoreDevelopment {
		t.Errorf("expected regression to %q, got %q", PhaseCoreDevelopment, second)
	}
}
