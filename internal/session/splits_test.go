package session

import (
	"math"
	"testing"

	"github.com/myrjola/stridr/internal/ptr"
)

func steadyRunEvents(totalSeconds, totalMeters float64, speedKmh float64) []Event {
	return []Event{
		{Seq: 0, Type: EventStart, ElapsedSeconds: 0, SpeedKmh: ptr.Ref(speedKmh), DistanceMeters: ptr.Ref(0.0)},
		{Seq: 1, Type: EventTick, ElapsedSeconds: totalSeconds / 2, DistanceMeters: ptr.Ref(totalMeters / 2)},
		{Seq: 2, Type: EventFinish, ElapsedSeconds: totalSeconds, DistanceMeters: ptr.Ref(totalMeters)},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestKilometerSplitsSteadyKilometer(t *testing.T) {
	// One kilometer in five minutes is 12 km/h and 5 min/km.
	splits := KilometerSplits(steadyRunEvents(300, 1000, 12))

	if len(splits) != 1 {
		t.Fatalf("got %d splits, want 1", len(splits))
	}
	got := splits[0]
	if got.Name != "Kilometer 1" || got.Type != SplitKilometer {
		t.Errorf("got split %q of type %q", got.Name, got.Type)
	}
	if !almostEqual(got.AverageSpeedKmh, 12) {
		t.Errorf("AverageSpeedKmh = %v, want 12", got.AverageSpeedKmh)
	}
	if !almostEqual(got.AveragePaceMinPerKm, 5) {
		t.Errorf("AveragePaceMinPerKm = %v, want 5", got.AveragePaceMinPerKm)
	}
	if !almostEqual(got.EndSeconds, 300) || !almostEqual(got.DistanceMeters, 1000) {
		t.Errorf("split covers %v s to %v m, want 300 s and 1000 m", got.EndSeconds, got.DistanceMeters)
	}
}

func TestKilometerSplitsPartialFinalKilometer(t *testing.T) {
	// 2500 m yields exactly two whole-kilometer splits, the trailing 500 m
	// is dropped.
	splits := KilometerSplits(steadyRunEvents(750, 2500, 12))

	if len(splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(splits))
	}
	if !almostEqual(splits[1].StartMeters, 1000) || !almostEqual(splits[1].EndMeters, 2000) {
		t.Errorf("second split covers %v..%v m, want 1000..2000", splits[1].StartMeters, splits[1].EndMeters)
	}
}

func TestKilometerSplitsShortSession(t *testing.T) {
	if splits := KilometerSplits(steadyRunEvents(300, 999, 12)); splits != nil {
		t.Errorf("got %d splits for a sub-kilometer session, want none", len(splits))
	}
}

func TestKilometerSplitsSnapsToNearbySample(t *testing.T) {
	events := []Event{
		{Seq: 0, Type: EventStart, ElapsedSeconds: 0, SpeedKmh: ptr.Ref(12.0), DistanceMeters: ptr.Ref(0.0)},
		{Seq: 1, Type: EventTick, ElapsedSeconds: 298, DistanceMeters: ptr.Ref(995.0)},
		{Seq: 2, Type: EventFinish, ElapsedSeconds: 450, DistanceMeters: ptr.Ref(1500.0)},
	}

	splits := KilometerSplits(events)

	if len(splits) != 1 {
		t.Fatalf("got %d splits, want 1", len(splits))
	}
	// The 995 m sample is within the 10 m snap tolerance of the boundary.
	if !almostEqual(splits[0].EndSeconds, 298) {
		t.Errorf("EndSeconds = %v, want the snapped 298", splits[0].EndSeconds)
	}
}

func TestKilometerSplitsInterpolatesBetweenSamples(t *testing.T) {
	events := []Event{
		{Seq: 0, Type: EventStart, ElapsedSeconds: 0, SpeedKmh: ptr.Ref(12.0), DistanceMeters: ptr.Ref(0.0)},
		{Seq: 1, Type: EventTick, ElapsedSeconds: 240, DistanceMeters: ptr.Ref(800.0)},
		{Seq: 2, Type: EventTick, ElapsedSeconds: 360, DistanceMeters: ptr.Ref(1200.0)},
		{Seq: 3, Type: EventFinish, ElapsedSeconds: 500, DistanceMeters: ptr.Ref(2000.0)},
	}

	splits := KilometerSplits(events)

	if len(splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(splits))
	}
	// 1000 m sits halfway between the 800 m and 1200 m samples, so its time
	// is halfway between 240 s and 360 s.
	if !almostEqual(splits[0].EndSeconds, 300) {
		t.Errorf("first split EndSeconds = %v, want the interpolated 300", splits[0].EndSeconds)
	}
	if !almostEqual(splits[1].StartSeconds, 300) || !almostEqual(splits[1].EndSeconds, 500) {
		t.Errorf("second split covers %v..%v s, want 300..500", splits[1].StartSeconds, splits[1].EndSeconds)
	}
}

func segmentedRunEvents() []Event {
	return []Event{
		{Seq: 0, Type: EventStart, ElapsedSeconds: 0, SpeedKmh: ptr.Ref(5.0), DistanceMeters: ptr.Ref(0.0)},
		{Seq: 1, Type: EventSegmentStart, ElapsedSeconds: 0, DistanceMeters: ptr.Ref(0.0),
			SegmentIndex: ptr.Ref(0), SegmentName: ptr.Ref("Warm-up")},
		{Seq: 2, Type: EventSegmentEnd, ElapsedSeconds: 300, DistanceMeters: ptr.Ref(420.0),
			SegmentIndex: ptr.Ref(0)},
		{Seq: 3, Type: EventSegmentStart, ElapsedSeconds: 300, DistanceMeters: ptr.Ref(420.0),
			SegmentIndex: ptr.Ref(1), SegmentName: ptr.Ref("Steady run")},
		{Seq: 4, Type: EventSpeedChange, ElapsedSeconds: 300, SpeedKmh: ptr.Ref(10.0),
			PreviousSpeedKmh: ptr.Ref(5.0), DistanceMeters: ptr.Ref(420.0)},
		{Seq: 5, Type: EventSpeedChange, ElapsedSeconds: 900, SpeedKmh: ptr.Ref(12.0),
			PreviousSpeedKmh: ptr.Ref(10.0), DistanceMeters: ptr.Ref(2086.0)},
		{Seq: 6, Type: EventSegmentEnd, ElapsedSeconds: 1800, DistanceMeters: ptr.Ref(5086.0),
			SegmentIndex: ptr.Ref(1)},
		{Seq: 7, Type: EventFinish, ElapsedSeconds: 1800, DistanceMeters: ptr.Ref(5086.0)},
	}
}

func TestSegmentSplits(t *testing.T) {
	splits := SegmentSplits(segmentedRunEvents())

	if len(splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(splits))
	}

	warmUp := splits[0]
	if warmUp.Name != "Warm-up" || warmUp.Type != SplitSegment {
		t.Errorf("got split %q of type %q, want the warm-up segment", warmUp.Name, warmUp.Type)
	}
	if !almostEqual(warmUp.DurationSeconds, 300) || !almostEqual(warmUp.DistanceMeters, 420) {
		t.Errorf("warm-up covers %v s and %v m, want 300 s and 420 m", warmUp.DurationSeconds, warmUp.DistanceMeters)
	}
	if warmUp.SpeedChangeCount != 0 {
		t.Errorf("warm-up SpeedChangeCount = %d, want 0", warmUp.SpeedChangeCount)
	}
	if !almostEqual(warmUp.MinSpeedKmh, 5) || !almostEqual(warmUp.MaxSpeedKmh, 5) {
		t.Errorf("warm-up speed range %v..%v, want steady 5", warmUp.MinSpeedKmh, warmUp.MaxSpeedKmh)
	}

	run := splits[1]
	if run.Name != "Steady run" {
		t.Errorf("second split name = %q, want Steady run", run.Name)
	}
	if run.SpeedChangeCount != 2 {
		t.Errorf("run SpeedChangeCount = %d, want 2", run.SpeedChangeCount)
	}
	if !almostEqual(run.MinSpeedKmh, 10) || !almostEqual(run.MaxSpeedKmh, 12) {
		t.Errorf("run speed range %v..%v, want 10..12", run.MinSpeedKmh, run.MaxSpeedKmh)
	}
	if !almostEqual(run.DistanceMeters, 4666) {
		t.Errorf("run DistanceMeters = %v, want 4666", run.DistanceMeters)
	}
}

func TestSegmentSplitsDiscardsDegenerateSegments(t *testing.T) {
	// A segment that opens and closes at the same instant has no duration or
	// distance and must not produce a split.
	events := []Event{
		{Seq: 0, Type: EventStart, ElapsedSeconds: 0, SpeedKmh: ptr.Ref(9.0), DistanceMeters: ptr.Ref(0.0)},
		{Seq: 1, Type: EventSegmentStart, ElapsedSeconds: 100, DistanceMeters: ptr.Ref(250.0),
			SegmentIndex: ptr.Ref(0), SegmentName: ptr.Ref("Warm-up")},
		{Seq: 2, Type: EventSegmentEnd, ElapsedSeconds: 100, DistanceMeters: ptr.Ref(250.0),
			SegmentIndex: ptr.Ref(0)},
		{Seq: 3, Type: EventSegmentStart, ElapsedSeconds: 100, DistanceMeters: ptr.Ref(250.0),
			SegmentIndex: ptr.Ref(1), SegmentName: ptr.Ref("Steady run")},
		{Seq: 4, Type: EventSegmentEnd, ElapsedSeconds: 400, DistanceMeters: ptr.Ref(1000.0),
			SegmentIndex: ptr.Ref(1)},
		{Seq: 5, Type: EventFinish, ElapsedSeconds: 400, DistanceMeters: ptr.Ref(1000.0)},
	}

	splits := SegmentSplits(events)

	if len(splits) != 1 {
		t.Fatalf("got %d splits, want only the segment with positive duration", len(splits))
	}
	if splits[0].Name != "Steady run" {
		t.Errorf("surviving split = %q, want Steady run", splits[0].Name)
	}
}

func TestSegmentSplitsUnmatchedEnd(t *testing.T) {
	events := []Event{
		{Seq: 0, Type: EventStart, ElapsedSeconds: 0, SpeedKmh: ptr.Ref(10.0), DistanceMeters: ptr.Ref(0.0)},
		{Seq: 1, Type: EventSegmentEnd, ElapsedSeconds: 300, SegmentIndex: ptr.Ref(0)},
	}
	if splits := SegmentSplits(events); len(splits) != 0 {
		t.Errorf("got %d splits from an unmatched segment_end, want 0", len(splits))
	}
}
