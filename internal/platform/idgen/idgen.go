// Package idgen issues human-readable, prefixed identifiers for clinic
// entities. Each entity kind has its own monotonically increasing counter,
// seeded at a distinct offset so IDs are easy to tell apart in logs.
package idgen

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrUnknownKind is returned by Next for a Kind outside the declared set.
var ErrUnknownKind = errors.New("unknown id kind")

// Kind identifies the entity family an ID is issued for.
type Kind int

const (
	Patient Kind = iota
	Doctor
	Appointment
	Bill
)

type kindSpec struct {
	prefix string
	width  int
	seed   int64
}

var specs = [...]kindSpec{
	Patient:     {prefix: "PAT", width: 5, seed: 1000},
	Doctor:      {prefix: "DOC", width: 5, seed: 500},
	Appointment: {prefix: "APT", width: 8, seed: 10000},
	Bill:        {prefix: "BILL", width: 8, seed: 5000},
}

func (k Kind) Valid() bool {
	return k >= Patient && int(k) < len(specs)
}

func (k Kind) String() string {
	switch k {
	case Patient:
		return "patient"
	case Doctor:
		return "doctor"
	case Appointment:
		return "appointment"
	case Bill:
		return "bill"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Issuer hands out identifiers. It is safe for concurrent use: two callers
// never observe the same counter value.
type Issuer struct {
	counters [len(specs)]atomic.Int64
}

// New returns an Issuer with every counter at its seed.
func New() *Issuer {
	iss := &Issuer{}
	iss.reset()
	return iss
}

// Next increments the counter for kind and formats the new value.
func (i *Issuer) Next(kind Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return i.next(kind), nil
}

func (i *Issuer) next(kind Kind) string {
	spec := specs[kind]
	n := i.counters[kind].Add(1)
	return fmt.Sprintf("%s%0*d", spec.prefix, spec.width, n)
}

// Current returns the last value handed out for kind (the seed if none),
// or 0 for an unknown kind.
func (i *Issuer) Current(kind Kind) int64 {
	if !kind.Valid() {
		return 0
	}
	return i.counters[kind].Load()
}

func (i *Issuer) PatientID() string     { return i.next(Patient) }
func (i *Issuer) DoctorID() string      { return i.next(Doctor) }
func (i *Issuer) AppointmentID() string { return i.next(Appointment) }
func (i *Issuer) BillID() string        { return i.next(Bill) }

// reset puts every counter back to its seed. Tests only.
func (i *Issuer) reset() {
	for k, spec := range specs {
		i.counters[k].Store(spec.seed)
	}
}
