package sandbox

import (
	"github.com/tandikan/enroll/internal/models"
)

// SeedDemo loads the demo catalog and staff accounts used by the sandbox
// binary and the integration tests. All demo accounts share the password
// "password123".
func SeedDemo(store *Store) error {
	accounts := []models.RegisterRequest{
		{Email: "ana.santos@tandikan.edu", Password: "password123", FirstName: "Ana", LastName: "Santos", StudentID: "2026-00117", Role: "student"},
		{Email: "registrar@tandikan.edu", Password: "password123", FirstName: "Rosa", LastName: "Dimaano", Role: "registrar"},
		{Email: "cashier@tandikan.edu", Password: "password123", FirstName: "Caloy", LastName: "Reyes", Role: "cashier"},
		{Email: "admin@tandikan.edu", Password: "password123", FirstName: "Site", LastName: "Admin", Role: "admin"},
	}
	for _, req := range accounts {
		if _, err := store.Register(req); err != nil {
			return err
		}
	}

	for _, sched := range demoSchedules() {
		store.AddSchedule(sched)
	}
	return nil
}

func demoSchedules() []models.Schedule {
	math101 := models.Subject{Code: "MATH101", Title: "College Algebra", Units: 3, YearLevel: 1, Semester: 1}
	eng101 := models.Subject{Code: "ENG101", Title: "Communication Skills", Units: 3, YearLevel: 1, Semester: 1}
	comp110 := models.Subject{Code: "COMP110", Title: "Introduction to Computing", Units: 3, YearLevel: 1, Semester: 1}
	comp110L := models.Subject{Code: "COMP110L", Title: "Introduction to Computing Laboratory", Units: 1, YearLevel: 1, Semester: 1}
	fil101 := models.Subject{Code: "FIL101", Title: "Komunikasyon sa Akademikong Filipino", Units: 3, YearLevel: 1, Semester: 1}
	pe101 := models.Subject{Code: "PE101", Title: "Physical Fitness", Units: 2, YearLevel: 1, Semester: 1}

	return []models.Schedule{
		{
			Subject: math101, Section: "A", Instructor: "E. Villanueva",
			Days: []string{"Mon", "Wed"}, TimeStart: "08:00", TimeEnd: "09:30",
			Room: "R201", MaxSlots: 40, AvailableSlots: 40,
		},
		{
			Subject: math101, Section: "B", Instructor: "E. Villanueva",
			Days: []string{"Tue", "Thu"}, TimeStart: "08:00", TimeEnd: "09:30",
			Room: "R201", MaxSlots: 40, AvailableSlots: 40,
		},
		{
			Subject: eng101, Section: "A", Instructor: "M. Cruz",
			Days: []string{"Mon", "Wed"}, TimeStart: "09:30", TimeEnd: "11:00",
			Room: "R105", MaxSlots: 40, AvailableSlots: 40,
		},
		{
			Subject: comp110, Section: "A", Instructor: "J. Ocampo",
			Days: []string{"Tue", "Thu"}, TimeStart: "10:00", TimeEnd: "11:30",
			Room: "CL1", MaxSlots: 30, AvailableSlots: 30,
		},
		{
			Subject: comp110L, Section: "A", Instructor: "J. Ocampo",
			Days: []string{"Fri"}, TimeStart: "13:00", TimeEnd: "16:00",
			Room: "CL2", MaxSlots: 30, AvailableSlots: 30,
		},
		{
			Subject: fil101, Section: "A", Instructor: "L. Bautista",
			Days: []string{"Mon", "Wed"}, TimeStart: "08:30", TimeEnd: "10:00",
			Room: "R110", MaxSlots: 40, AvailableSlots: 40,
		},
		{
			Subject: pe101, Section: "A", Instructor: "R. Torres",
			Days: []string{"Sat"}, TimeStart: "07:00", TimeEnd: "09:00",
			Room: "GYM", MaxSlots: 50, AvailableSlots: 50,
		},
	}
}
