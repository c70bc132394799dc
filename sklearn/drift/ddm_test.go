package drift

import (
	"testing"
)

func TestDDMNoDriftOnStableStream(t *testing.T) {
	ddm := NewDDM(WithDDMMinNumInstances(30))

	// 10% error rate, stable.
	for i := 0; i < 500; i++ {
		res := ddm.Update(i%10 != 0)
		if res.DriftDetected {
			t.Fatalf("false drift at sample %d", i)
		}
	}
}

func TestDDMDetectsErrorRateJump(t *testing.T) {
	ddm := NewDDM(WithDDMMinNumInstances(30))

	// Stable phase: 5% errors.
	for i := 0; i < 300; i++ {
		ddm.Update(i%20 != 0)
	}

	// Degraded phase: everything wrong. Drift must fire well within the
	// next few hundred samples.
	detected := false
	for i := 0; i < 300; i++ {
		if res := ddm.Update(false); res.DriftDetected {
			detected = true
			break
		}
	}
	if !detected {
		t.Fatal("no drift detected after error rate jumped to 100%")
	}

	// Detection resets the statistics.
	stats := ddm.GetStatistics()
	if stats.NumInstances != 0 {
		t.Errorf("NumInstances = %d after drift, want 0", stats.NumInstances)
	}
}

func TestDDMWarningBeforeDrift(t *testing.T) {
	ddm := NewDDM(WithDDMMinNumInstances(30))

	for i := 0; i < 300; i++ {
		ddm.Update(i%20 != 0)
	}

	sawWarning := false
	for i := 0; i < 300; i++ {
		res := ddm.Update(false)
		if res.DriftDetected {
			if !sawWarning {
				t.Error("drift fired without crossing the warning level first")
			}
			return
		}
		if res.WarningDetected {
			sawWarning = true
		}
	}
	t.Fatal("neither warning nor drift detected")
}

func TestDDMBelowMinInstances(t *testing.T) {
	ddm := NewDDM(WithDDMMinNumInstances(50))

	for i := 0; i < 49; i++ {
		res := ddm.Update(false)
		if res.WarningDetected || res.DriftDetected {
			t.Fatalf("detection before minimum sample count at sample %d", i)
		}
	}
}

func TestDDMReset(t *testing.T) {
	ddm := NewDDM()
	for i := 0; i < 100; i++ {
		ddm.Update(i%2 == 0)
	}
	ddm.Reset()

	stats := ddm.GetStatistics()
	if stats.NumInstances != 0 || stats.NumErrors != 0 {
		t.Errorf("statistics after Reset = %+v, want zeroed", stats)
	}
}
