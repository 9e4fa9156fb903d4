package session

import (
	"sync"

	"github.com/myrjola/stridr/internal/plan"
	"github.com/myrjola/stridr/internal/ptr"
)

// State is a snapshot of a running tracker.
type State struct {
	Elapsed            float64
	DistanceMeters     float64
	SpeedKmh           float64
	Paused             bool
	Finished           bool
	SegmentIndex       int
	RemainingInSegment float64
}

// Tracker simulates a treadmill session following a planned workout's
// segments and records the event log a device would send. It is safe for
// concurrent use.
type Tracker struct {
	mutex    sync.Mutex
	segments []plan.Segment
	state    State
	events   []Event
	seq      int
}

// NewTracker creates a tracker for a workout. An empty segment list tracks a
// free run without segment events.
func NewTracker(segments []plan.Segment) *Tracker {
	return &Tracker{segments: segments}
}

// Start begins the session at the given treadmill speed.
func (t *Tracker) Start(speedKmh float64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.state = State{SpeedKmh: speedKmh}
	t.append(Event{
		Type:           EventStart,
		ElapsedSeconds: 0,
		SpeedKmh:       ptr.Ref(speedKmh),
		DistanceMeters: ptr.Ref(0.0),
	})
	if len(t.segments) > 0 {
		t.state.RemainingInSegment = float64(t.segments[0].DurationSeconds)
		t.appendSegmentStart(0)
	}
}

// Advance moves session time forward. Distance accumulates at the current
// speed unless the session is paused, and segment boundaries crossed during
// the step emit their events.
func (t *Tracker) Advance(deltaSeconds float64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for deltaSeconds > 0 && !t.state.Finished {
		step := deltaSeconds
		inSegment := len(t.segments) > 0 && t.state.SegmentIndex < len(t.segments)
		if inSegment && !t.state.Paused && t.state.RemainingInSegment < step {
			step = t.state.RemainingInSegment
		}

		t.state.Elapsed += step
		if !t.state.Paused {
			t.state.DistanceMeters += t.state.SpeedKmh / 3.6 * step
			if inSegment {
				t.state.RemainingInSegment -= step
			}
		}
		deltaSeconds -= step

		if inSegment && !t.state.Paused && t.state.RemainingInSegment <= 0 {
			t.append(Event{
				Type:           EventSegmentEnd,
				ElapsedSeconds: t.state.Elapsed,
				DistanceMeters: ptr.Ref(t.state.DistanceMeters),
				SegmentIndex:   ptr.Ref(t.state.SegmentIndex),
			})
			t.state.SegmentIndex++
			if t.state.SegmentIndex < len(t.segments) {
				t.state.RemainingInSegment = float64(t.segments[t.state.SegmentIndex].DurationSeconds)
				t.appendSegmentStart(t.state.SegmentIndex)
			}
		}
	}

	t.append(Event{
		Type:           EventTick,
		ElapsedSeconds: t.state.Elapsed,
		DistanceMeters: ptr.Ref(t.state.DistanceMeters),
	})
}

// Pause stops the belt. Time keeps running but no distance accumulates.
func (t *Tracker) Pause() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.state.Paused || t.state.Finished {
		return
	}
	t.state.Paused = true
	t.append(Event{
		Type:           EventPause,
		ElapsedSeconds: t.state.Elapsed,
		DistanceMeters: ptr.Ref(t.state.DistanceMeters),
	})
}

// Resume restarts the belt at the speed it had before the pause.
func (t *Tracker) Resume() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.state.Paused || t.state.Finished {
		return
	}
	t.state.Paused = false
	t.append(Event{
		Type:           EventResume,
		ElapsedSeconds: t.state.Elapsed,
		SpeedKmh:       ptr.Ref(t.state.SpeedKmh),
		DistanceMeters: ptr.Ref(t.state.DistanceMeters),
	})
}

// SetSpeed changes the treadmill speed and records the transition.
func (t *Tracker) SetSpeed(speedKmh float64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.state.Finished || speedKmh == t.state.SpeedKmh {
		return
	}
	previous := t.state.SpeedKmh
	t.state.SpeedKmh = speedKmh
	t.append(Event{
		Type:             EventSpeedChange,
		ElapsedSeconds:   t.state.Elapsed,
		SpeedKmh:         ptr.Ref(speedKmh),
		PreviousSpeedKmh: ptr.Ref(previous),
		DistanceMeters:   ptr.Ref(t.state.DistanceMeters),
	})
}

// Finish ends the session. Further calls are no-ops.
func (t *Tracker) Finish() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.state.Finished {
		return
	}
	t.state.Finished = true
	t.append(Event{
		Type:           EventFinish,
		ElapsedSeconds: t.state.Elapsed,
		DistanceMeters: ptr.Ref(t.state.DistanceMeters),
	})
}

// State returns a snapshot of the tracker.
func (t *Tracker) State() State {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.state
}

// Events returns a copy of the event log recorded so far.
func (t *Tracker) Events() []Event {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	events := make([]Event, len(t.events))
	copy(events, t.events)
	return events
}

func (t *Tracker) append(e Event) {
	e.Seq = t.seq
	t.seq++
	t.events = append(t.events, e)
}

func (t *Tracker) appendSegmentStart(index int) {
	name := t.segments[index].Name
	t.append(Event{
		Type:           EventSegmentStart,
		ElapsedSeconds: t.state.Elapsed,
		DistanceMeters: ptr.Ref(t.state.DistanceMeters),
		SegmentIndex:   ptr.Ref(index),
		SegmentName:    ptr.Ref(name),
	})
}
