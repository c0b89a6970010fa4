package dto

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates / Format des dates sur le réseau
const DateLayout = "2006-01-02"

// Date is a day without time of day / Jour sans heure
type Date struct {
	time.Time
}

// DateFromPtr wraps an optional time / Enveloppe une date optionnelle
func DateFromPtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: t.UTC()}
}

// TimePtr unwraps a date, nil stays nil / Extrait la date, nil reste nil
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("date must use YYYY-MM-DD: %w", err)
	}
	d.Time = t
	return nil
}
