// Package midi adapts Standard MIDI Files to the score model: reading
// derives a page whose explicit signatures come from meter events and
// whose voice inferences come from per-bar note content; exporting writes
// the audited page back out as a meter map.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/rational"
	"github.com/davidorman/scoremend/score"
)

// ReadFile parses a MIDI file from disk.
func ReadFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// the smf reader panics on some malformed files
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, fmt.Errorf("error reading midi file... %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, fmt.Errorf("error parsing midi file... %w", err)
	}
	return res, nil
}

// ReadScoreFile derives a score page from a MIDI file on disk.
func ReadScoreFile(filepath string, id string) (*score.Page, error) {
	s, err := ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return FromSMF(s, id)
}

type meterChange struct {
	tick int64
	num  uint8
	den  uint8
}

type bar struct {
	start int64
	end   int64
	meter *meterChange // non-nil when a meter event lands on this bar
}

// FromSMF turns an SMF into a page: one part per track with note content,
// meter events become explicit time signatures on the bar they open, and
// each bar's summed note duration becomes that bar's voice inference.
func FromSMF(s *smf.SMF, id string) (*score.Page, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported SMF time format %v", s.TimeFormat)
	}
	whole := int64(mt.Ticks4th()) * 4

	meters, maxTick := scanTracks(s)
	if maxTick == 0 {
		return nil, errors.New("midi file contains no notes")
	}
	bars := layoutBars(meters, maxTick, whole)

	f := &model.ScoreFile{ID: id}
	for ti, track := range s.Tracks {
		sums := barNoteSums(track, bars)
		hasNotes := false
		for _, sum := range sums {
			if sum > 0 {
				hasNotes = true
				break
			}
		}
		if !hasNotes {
			// meter-only or empty track, not a part
			continue
		}

		part := model.PartDTO{
			Name:   fmt.Sprintf("Track %d", ti+1),
			Staves: []model.StaffDTO{{LineSpacing: 10}},
		}
		for bi, b := range bars {
			md := model.MeasureDTO{}
			if b.meter != nil {
				md.TimeSigs = []*model.TimeSigDTO{{
					Num: int(b.meter.num),
					Den: int(b.meter.den),
				}}
			}
			if sums[bi] > 0 {
				inferred, err := rational.New(int(sums[bi]), int(whole))
				if err == nil {
					md.Voices = []model.VoiceDTO{{ID: 1, Inferred: &inferred}}
				}
			}
			part.Measures = append(part.Measures, md)
		}
		f.Parts = append(f.Parts, part)
	}

	if len(f.Parts) == 0 {
		return nil, errors.New("midi file contains no playable tracks")
	}
	return score.Build(f)
}

// scanTracks collects every meter event and the last note tick.
func scanTracks(s *smf.SMF) ([]meterChange, int64) {
	var meters []meterChange
	var maxTick int64

	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var num, den uint8
			var channel, key, velocity uint8
			switch {
			case event.Message.GetMetaMeter(&num, &den):
				meters = append(meters, meterChange{tick: absTicks, num: num, den: den})
			case event.Message.GetNoteOn(&channel, &key, &velocity),
				event.Message.GetNoteOff(&channel, &key, &velocity):
				if absTicks > maxTick {
					maxTick = absTicks
				}
			}
		}
	}

	sort.Slice(meters, func(i, j int) bool {
		return meters[i].tick < meters[j].tick
	})
	return meters, maxTick
}

// layoutBars segments [0, maxTick) into bars, switching bar length at each
// meter change. Changes not landing on a bar boundary snap to the bar they
// fall in.
func layoutBars(meters []meterChange, maxTick, whole int64) []bar {
	barLen := func(m *meterChange) int64 {
		if m == nil || m.den == 0 {
			return whole // no meter yet, assume 4/4
		}
		return whole * int64(m.num) / int64(m.den)
	}

	var bars []bar
	var current *meterChange
	next := 0
	tick := int64(0)

	for tick < maxTick {
		b := bar{start: tick}
		for next < len(meters) && meters[next].tick <= tick {
			m := meters[next]
			current = &m
			b.meter = &m
			next++
		}
		b.end = tick + barLen(current)
		bars = append(bars, b)
		tick = b.end
	}
	return bars
}

// barNoteSums credits each note's tick duration to the bar holding its
// onset and reports the per-bar totals.
func barNoteSums(track smf.Track, bars []bar) []int64 {
	sums := make([]int64, len(bars))
	barOf := func(tick int64) int {
		for i, b := range bars {
			if tick >= b.start && tick < b.end {
				return i
			}
		}
		return -1
	}

	onsets := make(map[uint8]int64)
	var absTicks int64
	for _, event := range track {
		absTicks += int64(event.Delta)
		var channel, key, velocity uint8
		switch {
		case event.Message.GetNoteOn(&channel, &key, &velocity):
			onsets[key] = absTicks
		case event.Message.GetNoteOff(&channel, &key, &velocity):
			on, ok := onsets[key]
			if !ok {
				continue
			}
			delete(onsets, key)
			if i := barOf(on); i >= 0 {
				sums[i] += absTicks - on
			}
		}
	}
	return sums
}

// Export writes the page's (possibly corrected) meter map as an SMF, one
// track per part, a meter event on every measure carrying an explicit
// signature.
func Export(page *score.Page, filepath string) error {
	clock := smf.MetricTicks(960)
	whole := int64(clock.Ticks4th()) * 4
	out := smf.New()
	out.TimeFormat = clock

	for _, part := range page.Parts {
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(part.Name))

		current := rational.MustNew(4, 4)
		var tick, lastEvent int64
		for _, m := range part.Measures {
			if sig := measureSignature(m, part); sig != nil {
				if r, err := sig.Rational(); err == nil {
					tr.Add(uint32(tick-lastEvent), smf.MetaMeter(uint8(r.Num), uint8(r.Den)))
					lastEvent = tick
					current = r
				}
			}
			tick += whole * int64(current.Num) / int64(current.Den)
		}
		tr.Close(uint32(tick - lastEvent))
		if err := out.Add(tr); err != nil {
			return fmt.Errorf("add track for part %q: %w", part.Name, err)
		}
	}

	return out.WriteFile(filepath)
}

// measureSignature reports the measure's first readable explicit signature
// across its staves.
func measureSignature(m *score.Measure, part *score.Part) *score.TimeSignature {
	for si := range part.Staves {
		if sig := m.TimeSignature(si); sig != nil {
			return sig
		}
	}
	return nil
}
