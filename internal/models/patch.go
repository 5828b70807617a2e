package models

import "time"

// TimePatch is one field of an administrator correction. Set=false leaves the
// field untouched; Set=true with a nil Value clears it.
type TimePatch struct {
	Set   bool
	Value *time.Time
}

// SetTo builds a patch assigning t.
func SetTo(t time.Time) TimePatch {
	return TimePatch{Set: true, Value: &t}
}

// Clear builds a patch clearing the field.
func Clear() TimePatch {
	return TimePatch{Set: true}
}

func (p TimePatch) apply(current *time.Time) *time.Time {
	if !p.Set {
		return current
	}
	return p.Value
}

// RecordPatch overwrites any subset of a day's punches and its source tag.
// No ordering checks are made: a timeOut earlier than timeIn is accepted.
type RecordPatch struct {
	TimeIn   TimePatch
	LunchOut TimePatch
	LunchIn  TimePatch
	TimeOut  TimePatch
	Source   *Source
}

// Empty reports whether the patch changes nothing.
func (p RecordPatch) Empty() bool {
	return !p.TimeIn.Set && !p.LunchOut.Set && !p.LunchIn.Set && !p.TimeOut.Set && p.Source == nil
}

// Apply returns punches with the patched fields replaced.
func (p RecordPatch) Apply(punches Punches) Punches {
	return Punches{
		TimeIn:   p.TimeIn.apply(punches.TimeIn),
		LunchOut: p.LunchOut.apply(punches.LunchOut),
		LunchIn:  p.LunchIn.apply(punches.LunchIn),
		TimeOut:  p.TimeOut.apply(punches.TimeOut),
	}
}
