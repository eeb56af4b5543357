// Package workflow holds the client-side enrollment pipeline: schedule
// selection, the advisory fee preview, conflict checking and the
// submit/assess/pay sequence. Types here are single-owner and not safe for
// concurrent use; the surrounding application is event-driven.
package workflow

// Selection is an order-preserving set of candidate schedule ids. Insertion
// order is kept for display; membership is unique.
type Selection struct {
	ids      []int64
	member   map[int64]struct{}
	onChange []func([]int64)
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{member: make(map[int64]struct{})}
}

// OnChange registers a listener notified with the new id list on every
// mutation. Used to keep the submission step in sync with the selection.
func (s *Selection) OnChange(fn func([]int64)) {
	if fn != nil {
		s.onChange = append(s.onChange, fn)
	}
}

// Toggle flips membership of id. Toggling the same id twice is a no-op on
// the resulting set. Returns true when the id is selected afterwards.
func (s *Selection) Toggle(id int64) bool {
	if _, ok := s.member[id]; ok {
		delete(s.member, id)
		for i, existing := range s.ids {
			if existing == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		s.notify()
		return false
	}
	s.member[id] = struct{}{}
	s.ids = append(s.ids, id)
	s.notify()
	return true
}

// Contains reports membership.
func (s *Selection) Contains(id int64) bool {
	_, ok := s.member[id]
	return ok
}

// IDs returns the selected ids in insertion order.
func (s *Selection) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	if len(s.ids) == 0 {
		return
	}
	s.ids = nil
	s.member = make(map[int64]struct{})
	s.notify()
}

func (s *Selection) notify() {
	if len(s.onChange) == 0 {
		return
	}
	snapshot := s.IDs()
	for _, fn := range s.onChange {
		fn(snapshot)
	}
}

// PreviewRates carries the advisory flat rates for the fee preview.
type PreviewRates struct {
	CreditPerSubject int
	RatePerUnit      float64
	MiscRate         float64
}

// Preview is the client-only fee estimate shown before submission. It is
// deliberately a distinct type from models.Assessment: only the
// server-computed assessment is authoritative.
type Preview struct {
	Units   int     `json:"units"`
	Tuition float64 `json:"tuition"`
	Misc    float64 `json:"misc"`
	Total   float64 `json:"total"`
}

// ComputePreview derives the advisory estimate for a subject count using the
// flat per-subject credit value. It intentionally does not sum per-subject
// units; the authoritative assessment is server-computed either way.
func ComputePreview(subjectCount int, rates PreviewRates) Preview {
	units := subjectCount * rates.CreditPerSubject
	tuition := float64(units) * rates.RatePerUnit
	misc := tuition * rates.MiscRate
	return Preview{
		Units:   units,
		Tuition: tuition,
		Misc:    misc,
		Total:   tuition + misc,
	}
}
