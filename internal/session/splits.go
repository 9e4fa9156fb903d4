package session

import (
	"fmt"
	"math"
	"sort"
)

const (
	kilometerMeters = 1000.0
	// Distance samples within this many meters of a kilometer boundary snap
	// to it instead of interpolating.
	snapToleranceMeters = 10.0
)

// speedPoint marks a speed taking effect at a point in session time. The
// speed holds until the next point, forming a step function.
type speedPoint struct {
	at    float64
	speed float64
}

// speedTimeline extracts the treadmill speed step function from the event
// log. Pauses count as zero speed until the next resume.
func speedTimeline(events []Event) []speedPoint {
	var timeline []speedPoint
	for _, e := range events {
		switch e.Type {
		case EventStart, EventSpeedChange, EventResume:
			if e.SpeedKmh != nil {
				timeline = append(timeline, speedPoint{at: e.ElapsedSeconds, speed: *e.SpeedKmh})
			}
		case EventPause:
			timeline = append(timeline, speedPoint{at: e.ElapsedSeconds, speed: 0})
		case EventSegmentStart, EventSegmentEnd, EventTick, EventFinish:
		}
	}
	return timeline
}

// speedAt returns the speed in effect at elapsed time t, zero before the
// first recorded speed.
func speedAt(timeline []speedPoint, t float64) float64 {
	speed := 0.0
	for _, p := range timeline {
		if p.at > t {
			break
		}
		speed = p.speed
	}
	return speed
}

// speedRange returns the minimum and maximum speed over [start, end),
// including the speed already in effect at start.
func speedRange(timeline []speedPoint, start, end float64) (float64, float64) {
	minSpeed := speedAt(timeline, start)
	maxSpeed := minSpeed
	for _, p := range timeline {
		if p.at < start || p.at >= end {
			continue
		}
		minSpeed = math.Min(minSpeed, p.speed)
		maxSpeed = math.Max(maxSpeed, p.speed)
	}
	return minSpeed, maxSpeed
}

// countSpeedChanges counts speed_change events with start <= elapsed < end.
func countSpeedChanges(events []Event, start, end float64) int {
	count := 0
	for _, e := range events {
		if e.Type == EventSpeedChange && e.ElapsedSeconds >= start && e.ElapsedSeconds < end {
			count++
		}
	}
	return count
}

// sample is a known (elapsed, distance) pair from the event log.
type sample struct {
	elapsed  float64
	distance float64
}

// distanceSamples collects every event that carries a cumulative distance.
// A session implicitly starts at zero meters.
func distanceSamples(events []Event) []sample {
	samples := []sample{{elapsed: 0, distance: 0}}
	for _, e := range events {
		if e.DistanceMeters == nil {
			continue
		}
		samples = append(samples, sample{elapsed: e.ElapsedSeconds, distance: *e.DistanceMeters})
	}
	return samples
}

// elapsedAtDistance estimates when the session passed the target distance.
// A sample close to the target snaps to it, otherwise the time is linearly
// interpolated between the surrounding samples.
func elapsedAtDistance(samples []sample, target float64) float64 {
	closest := -1
	for i, s := range samples {
		diff := math.Abs(s.distance - target)
		if diff <= snapToleranceMeters &&
			(closest == -1 || diff < math.Abs(samples[closest].distance-target)) {
			closest = i
		}
	}
	if closest >= 0 {
		return samples[closest].elapsed
	}

	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		if target <= prev.distance || target > curr.distance {
			continue
		}
		span := curr.distance - prev.distance
		if span <= 0 {
			return curr.elapsed
		}
		fraction := (target - prev.distance) / span
		return prev.elapsed + fraction*(curr.elapsed-prev.elapsed)
	}
	return samples[len(samples)-1].elapsed
}

// distanceAt estimates the cumulative distance at elapsed time t by linear
// interpolation between the surrounding samples.
func distanceAt(samples []sample, t float64) float64 {
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		if t > curr.elapsed {
			continue
		}
		span := curr.elapsed - prev.elapsed
		if span <= 0 {
			return curr.distance
		}
		fraction := (t - prev.elapsed) / span
		return prev.distance + fraction*(curr.distance-prev.distance)
	}
	return samples[len(samples)-1].distance
}

func buildSplit(splitType SplitType, index int, name string,
	startSeconds, endSeconds, startMeters, endMeters float64,
	timeline []speedPoint, events []Event) Split {
	duration := endSeconds - startSeconds
	distance := endMeters - startMeters
	avgSpeed := averageSpeedKmh(distance, duration)
	minSpeed, maxSpeed := speedRange(timeline, startSeconds, endSeconds)
	return Split{
		Type:                splitType,
		Index:               index,
		Name:                name,
		StartSeconds:        startSeconds,
		EndSeconds:          endSeconds,
		StartMeters:         startMeters,
		EndMeters:           endMeters,
		DurationSeconds:     duration,
		DistanceMeters:      distance,
		AverageSpeedKmh:     avgSpeed,
		AveragePaceMinPerKm: paceMinPerKm(avgSpeed),
		SpeedChangeCount:    countSpeedChanges(events, startSeconds, endSeconds),
		MinSpeedKmh:         minSpeed,
		MaxSpeedKmh:         maxSpeed,
	}
}

// SegmentSplits derives one split per completed training segment from
// matching segment_start and segment_end events.
func SegmentSplits(events []Event) []Split {
	timeline := speedTimeline(events)
	samples := distanceSamples(events)

	open := map[int]Event{}
	var splits []Split
	for _, e := range events {
		if e.SegmentIndex == nil {
			continue
		}
		switch e.Type {
		case EventSegmentStart:
			open[*e.SegmentIndex] = e
		case EventSegmentEnd:
			startEvt, ok := open[*e.SegmentIndex]
			if !ok {
				continue
			}
			delete(open, *e.SegmentIndex)

			name := fmt.Sprintf("Segment %d", *e.SegmentIndex+1)
			if startEvt.SegmentName != nil {
				name = *startEvt.SegmentName
			}
			startMeters := distanceAt(samples, startEvt.ElapsedSeconds)
			if startEvt.DistanceMeters != nil {
				startMeters = *startEvt.DistanceMeters
			}
			endMeters := distanceAt(samples, e.ElapsedSeconds)
			if e.DistanceMeters != nil {
				endMeters = *e.DistanceMeters
			}
			split := buildSplit(SplitSegment, *e.SegmentIndex, name,
				startEvt.ElapsedSeconds, e.ElapsedSeconds, startMeters, endMeters,
				timeline, events)
			// Splits without positive duration and distance are discarded.
			if split.DurationSeconds <= 0 || split.DistanceMeters <= 0 {
				continue
			}
			splits = append(splits, split)
		default:
		}
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].Index < splits[j].Index })
	return splits
}

// KilometerSplits derives one split per whole kilometer covered. Sessions
// shorter than a kilometer have none.
func KilometerSplits(events []Event) []Split {
	timeline := speedTimeline(events)
	samples := distanceSamples(events)
	total := samples[len(samples)-1].distance

	count := int(total / kilometerMeters)
	if count == 0 {
		return nil
	}

	splits := make([]Split, 0, count)
	prevSeconds := 0.0
	for km := 1; km <= count; km++ {
		boundary := float64(km) * kilometerMeters
		endSeconds := elapsedAtDistance(samples, boundary)
		splits = append(splits, buildSplit(SplitKilometer, km-1, fmt.Sprintf("Kilometer %d", km),
			prevSeconds, endSeconds, boundary-kilometerMeters, boundary,
			timeline, events))
		prevSeconds = endSeconds
	}
	return splits
}
