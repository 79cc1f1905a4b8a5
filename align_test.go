package attnmt

import "testing"

func TestAlign(t *testing.T) {
	m := testModel(t)
	source, target := testSource(m), testTarget(m)
	alignment := m.Align(source, target)
	if len(alignment) != len(target) {
		t.Fatalf("expected %d rows but got %d", len(target), len(alignment))
	}
	for _, row := range alignment {
		requireDistribution(t, "alignment row", row, len(source))
	}

	session := m.NewSession(source)
	for i, row := range alignment {
		if !statesEqual(row, session.Replay(i).Alignment()) {
			t.Errorf("row %d does not match the decoder's attention", i)
		}
	}

	if len(m.Align(source, nil)) != 0 {
		t.Error("empty target should give no rows")
	}
}
