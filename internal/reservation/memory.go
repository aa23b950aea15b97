package reservation

import (
	"sync"
	"time"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

// memoryStore holds reservations issued while the shared cache is down. Seat
// exclusivity is only enforced between reservations of this process.
type memoryStore struct {
	mu           sync.Mutex
	reservations map[string]domain.Reservation
	seats        map[int64]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		reservations: make(map[string]domain.Reservation),
		seats:        make(map[int64]string),
	}
}

// put stores r and takes its seats. It returns false when one of the seats
// belongs to another live reservation.
func (s *memoryStore) put(r domain.Reservation, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seatID := range r.SeatIDs {
		owner, ok := s.seats[seatID]
		if !ok {
			continue
		}

		if _, live := s.getLocked(owner, now); live {
			return false
		}
	}

	s.reservations[r.ID] = r
	for _, seatID := range r.SeatIDs {
		s.seats[seatID] = r.ID
	}

	return true
}

func (s *memoryStore) get(id string, now time.Time) (domain.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getLocked(id, now)
}

// getLocked expects s.mu to be held. Expired entries are dropped on read.
func (s *memoryStore) getLocked(id string, now time.Time) (domain.Reservation, bool) {
	r, ok := s.reservations[id]
	if !ok {
		return domain.Reservation{}, false
	}

	if !now.Before(r.ExpiresAt) {
		s.deleteLocked(r)
		return domain.Reservation{}, false
	}

	return r, true
}

func (s *memoryStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.reservations[id]; ok {
		s.deleteLocked(r)
	}
}

func (s *memoryStore) deleteLocked(r domain.Reservation) {
	delete(s.reservations, r.ID)
	for _, seatID := range r.SeatIDs {
		if s.seats[seatID] == r.ID {
			delete(s.seats, seatID)
		}
	}
}

// heldSeats returns the subset of seatIDs taken by a live local reservation.
func (s *memoryStore) heldSeats(seatIDs []int64, now time.Time) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := make([]int64, 0)
	for _, seatID := range seatIDs {
		owner, ok := s.seats[seatID]
		if !ok {
			continue
		}

		if _, live := s.getLocked(owner, now); live {
			held = append(held, seatID)
		}
	}

	return held
}
