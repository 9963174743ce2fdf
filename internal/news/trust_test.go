package news

import (
	"math/rand"
	"testing"
)

func TestComputeTrustNeutralSplit(t *testing.T) {
	m := ComputeTrust(0, 0)
	if m.TotalResponses != 0 {
		t.Errorf("expected 0 total responses, got %d", m.TotalResponses)
	}
	if m.VerifyPercent != 50 || m.FlagPercent != 50 {
		t.Errorf("expected 50/50 split, got %v/%v", m.VerifyPercent, m.FlagPercent)
	}
	if m.IsVerified {
		t.Error("zero responses must not be verified")
	}
}

func TestComputeTrustScenario(t *testing.T) {
	// 7 verifications, 1 flag: 87.5% / 12.5%, below threshold.
	m := ComputeTrust(7, 1)
	if m.TotalResponses != 8 {
		t.Errorf("expected 8 total responses, got %d", m.TotalResponses)
	}
	if m.VerifyPercent != 87.5 {
		t.Errorf("expected verifyPercent 87.5, got %v", m.VerifyPercent)
	}
	if m.FlagPercent != 12.5 {
		t.Errorf("expected flagPercent 12.5, got %v", m.FlagPercent)
	}
	if m.IsVerified {
		t.Error("7 verifications must not be verified")
	}
}

func TestComputeTrustVerifiedBoundaries(t *testing.T) {
	tests := []struct {
		verifications int
		flags         int
		want          bool
	}{
		{9, 0, false},
		{10, 0, true},
		{10, 2, true},
		{10, 3, false},
		{100, 2, true},
		{100, 3, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		got := ComputeTrust(tt.verifications, tt.flags).IsVerified
		if got != tt.want {
			t.Errorf("ComputeTrust(%d, %d).IsVerified = %v, want %v",
				tt.verifications, tt.flags, got, tt.want)
		}
	}
}

func TestComputeTrustPercentsSumTo100(t *testing.T) {
	// Property: for any count pair the two percents sum to exactly 100.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := rng.Intn(500)
		f := rng.Intn(500)
		m := ComputeTrust(v, f)
		if sum := m.VerifyPercent + m.FlagPercent; sum != 100 {
			t.Fatalf("ComputeTrust(%d, %d): percents sum to %v, want 100", v, f, sum)
		}
		if m.IsVerified != (v >= VerifyThreshold && f < FlagCeiling) {
			t.Fatalf("ComputeTrust(%d, %d): IsVerified = %v", v, f, m.IsVerified)
		}
	}
}
