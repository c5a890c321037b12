package scheduling

import (
	"context"
	"time"

	"github.com/meditrack/clinic/internal/domain/directory"
)

const (
	openingHour = 9
	closingHour = 17
	slotLength  = 30 * time.Minute
)

// DoctorAvailability pairs a recommended doctor with the open slots found
// for them.
type DoctorAvailability struct {
	Doctor *directory.Doctor `json:"doctor"`
	Slots  []time.Time       `json:"slots"`
}

// SuggestAvailableSlots lists up to maxSlots open starting times for the
// doctor, in chronological order, over max(1, daysAhead) days beginning
// today. Clinic hours run from 09:00 up to but excluding 17:00 on a 30-minute
// grid in the clock's location. A slot is taken only when a non-cancelled
// appointment of the doctor starts at exactly that instant; overlap with an
// off-grid appointment is not detected.
func (s *Service) SuggestAvailableSlots(ctx context.Context, doctorID string, daysAhead, maxSlots int) []time.Time {
	slots := make([]time.Time, 0)
	if maxSlots <= 0 {
		s.metrics.SlotSearch(0)
		return slots
	}

	booked := make(map[int64]bool)
	for _, a := range s.ListByDoctor(ctx, doctorID) {
		if a.blocksSlot() {
			booked[a.DateTime.UnixNano()] = true
		}
	}

	now := s.now().Truncate(time.Minute)
	loc := now.Location()
	y, m, d := now.Date()
	days := max(1, daysAhead)

	for day := 0; day < days && len(slots) < maxSlots; day++ {
		open := time.Date(y, m, d+day, openingHour, 0, 0, 0, loc)
		closing := time.Date(y, m, d+day, closingHour, 0, 0, 0, loc)
		for slot := open; slot.Before(closing) && len(slots) < maxSlots; slot = slot.Add(slotLength) {
			if slot.Before(now) || booked[slot.UnixNano()] {
				continue
			}
			slots = append(slots, slot)
		}
	}

	s.metrics.SlotSearch(len(slots))
	return slots
}

// SuggestSlotsForSymptoms recommends up to maxDoctors doctors for the
// symptoms and looks up open slots for each. The result follows the
// recommendation order; doctors with no open slot are included with an
// empty list.
func (s *Service) SuggestSlotsForSymptoms(ctx context.Context, symptoms []string, maxDoctors, daysAhead, slotsPerDoctor int) []DoctorAvailability {
	recommended := s.doctors.RecommendBySymptoms(ctx, symptoms, maxDoctors)
	out := make([]DoctorAvailability, 0, len(recommended))
	for _, doc := range recommended {
		out = append(out, DoctorAvailability{
			Doctor: doc,
			Slots:  s.SuggestAvailableSlots(ctx, doc.ID, daysAhead, slotsPerDoctor),
		})
	}
	return out
}
