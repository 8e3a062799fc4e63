package lipmaa

import "testing"

func TestLipmaaSentinels(t *testing.T) {
	if got := Lipmaa(1); got != 1 {
		t.Errorf("Lipmaa(1) = %d, want 1", got)
	}
	if got := Lipmaa(0); got != 1 {
		t.Errorf("Lipmaa(0) = %d, want 1", got)
	}
}

func TestLipmaaMonotonePredecessor(t *testing.T) {
	for seq := uint64(2); seq <= 100000; seq++ {
		if got := Lipmaa(seq); got >= seq {
			t.Fatalf("Lipmaa(%d) = %d, not < seq", seq, got)
		}
	}
}

func TestLipmaaReachesOneLogarithmically(t *testing.T) {
	const maxSeq = 1000000

	for _, seq := range []uint64{2, 3, 4, 9, 100, 12345, maxSeq} {
		n := seq
		steps := 0
		for n != 1 {
			n = Lipmaa(n)
			steps++
			if steps > 200 {
				t.Fatalf("seq %d did not reach 1 within 200 steps", seq)
			}
		}
		// O(log_3 seq) steps; 200 is a generous ceiling for seq <= 10^6.
	}
}

func TestIsRequiredSecondEntry(t *testing.T) {
	// seq 2's lipmaa target coincides with its backlink, per the spec's
	// worked example: lipmaa(2) == 1 == 2-1.
	if Lipmaa(2) != 1 {
		t.Fatalf("Lipmaa(2) = %d, want 1", Lipmaa(2))
	}
	if IsRequired(2) {
		t.Fatal("IsRequired(2) = true, want false")
	}
}

func TestIsRequiredFirstEntry(t *testing.T) {
	if IsRequired(1) {
		t.Fatal("IsRequired(1) = true, want false")
	}
}

func TestSmallestEntryRequiringLipmaaLink(t *testing.T) {
	seq := uint64(2)
	for !IsRequired(seq) {
		seq++
	}
	if Lipmaa(seq) == seq-1 {
		t.Fatalf("seq %d was reported as requiring a lipmaa link but target equals backlink", seq)
	}
}
