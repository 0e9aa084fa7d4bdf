// internal/membership/service.go
package membership

import (
	"context"
)

// Service defines the operations the form front-end drives.
type Service interface {
	CreateRegular(ctx context.Context, in RegularInput) (Result, error)
	CreatePremium(ctx context.Context, in PremiumInput) (Result, error)
	Find(ctx context.Context, id int) (Member, error)
	List(ctx context.Context) Summary

	Activate(ctx context.Context, id int) (Result, error)
	Deactivate(ctx context.Context, id int) (Result, error)
	MarkAttendance(ctx context.Context, id int) (Result, error)

	UpgradePlan(ctx context.Context, id int, plan string) (Result, error)
	RevertRegular(ctx context.Context, id int, reason string) (Result, error)

	PayDue(ctx context.Context, id int, amount float64) (Result, error)
	CalculateDiscount(ctx context.Context, id int) (Result, error)
	RevertPremium(ctx context.Context, id int) (Result, error)

	Save(ctx context.Context, name string) (string, error)
	Load(ctx context.Context, location string) (Summary, error)
}

// SnapshotStore persists the whole registry. Save returns the location a
// later Load accepts.
type SnapshotStore interface {
	Save(ctx context.Context, name string, members []Member) (string, error)
	Load(ctx context.Context, location string) ([]Member, error)
}

// Result pairs the member state after an operation with what the operation did.
type Result struct {
	Member  Member  `json:"member"`
	Outcome Outcome `json:"outcome"`
}

// Summary is the listing of every member with totals per kind.
type Summary struct {
	Members []SummaryEntry `json:"members"`
	Total   int            `json:"total"`
	Regular int            `json:"regular"`
	Premium int            `json:"premium"`
	Active  int            `json:"active"`
}

type SummaryEntry struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	IsActive bool   `json:"is_active"`
}

func summarize(members []Member) Summary {
	s := Summary{Members: make([]SummaryEntry, 0, len(members)), Total: len(members)}
	for _, m := range members {
		switch m.Kind {
		case KindRegular:
			s.Regular++
		case KindPremium:
			s.Premium++
		}
		if m.IsActive {
			s.Active++
		}
		s.Members = append(s.Members, SummaryEntry{ID: m.ID, Name: m.Name, Kind: m.Kind, IsActive: m.IsActive})
	}
	return s
}
