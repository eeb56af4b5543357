package models

// Subject is a catalog entry. Prerequisites are a set of subject codes;
// ordering carries no meaning.
type Subject struct {
	ID            int64    `json:"id"`
	Code          string   `json:"code"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Units         int      `json:"units"`
	YearLevel     int      `json:"yearLevel"`
	Semester      int      `json:"semester"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// RequiresLab reports whether the subject carries a laboratory component.
// The reference catalog marks lab subjects through their code suffix.
func (s Subject) RequiresLab() bool {
	n := len(s.Code)
	return n > 0 && s.Code[n-1] == 'L'
}
