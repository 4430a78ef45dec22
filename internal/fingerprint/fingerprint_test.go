package fingerprint

import (
	"testing"

	"meetingsync/internal/domain"
)

func sampleMeeting() domain.Meeting {
	return domain.Meeting{
		ServiceBodyID: 1,
		Name:          "Tiistairyhmä",
		Day:           2,
		StartTime:     "18:30",
		Duration:      "01:30",
		Published:     true,
		VenueType:     domain.VenueInPerson,
		Latitude:      60.1699,
		Longitude:     24.9384,
		FormatIDs:     []int{10, 12},
		ExternalID:    "wp:42",
	}
}

func TestComputeIgnoresCoordinates(t *testing.T) {
	t.Parallel()

	a := sampleMeeting()
	b := sampleMeeting()
	b.Latitude = 60.17012
	b.Longitude = 24.93777

	fpA, err := Compute(a)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	fpB, err := Compute(b)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if fpA != fpB {
		t.Fatalf("coordinate drift changed the fingerprint: %s vs %s", fpA, fpB)
	}
}

func TestComputeSeesContentChanges(t *testing.T) {
	t.Parallel()

	a := sampleMeeting()
	b := sampleMeeting()
	b.StartTime = "19:00"

	fpA, _ := Compute(a)
	fpB, _ := Compute(b)

	if fpA == fpB {
		t.Fatalf("start time change did not change the fingerprint")
	}
}

func TestComputeStable(t *testing.T) {
	t.Parallel()

	first, _ := Compute(sampleMeeting())
	second, _ := Compute(sampleMeeting())

	if first != second {
		t.Fatalf("fingerprint not deterministic: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", first)
	}
}
