package models

// Schedule is one offered section of a Subject. Days holds weekday tokens
// ("Mon".."Sun"); TimeStart/TimeEnd are wall-clock "HH:MM" strings.
// Invariant: 0 <= AvailableSlots <= MaxSlots.
type Schedule struct {
	ID             int64    `json:"id"`
	Subject        Subject  `json:"subject"`
	Section        string   `json:"section"`
	Instructor     string   `json:"instructor"`
	Days           []string `json:"days"`
	TimeStart      string   `json:"timeStart"`
	TimeEnd        string   `json:"timeEnd"`
	Room           string   `json:"room"`
	MaxSlots       int      `json:"maxSlots"`
	AvailableSlots int      `json:"availableSlots"`
}

// Full reports whether the section has no remaining capacity.
func (s Schedule) Full() bool {
	return s.AvailableSlots <= 0
}
