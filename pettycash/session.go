package pettycash

import "github.com/warp/pettycash/generic"

// Session is the signed-in user and the fund they are working on. Callers
// pass it explicitly; there is no process-wide current user or fund.
type Session struct {
	Actor       string // username, recorded in audit entries
	DisplayName string
	Role        Role
	FundID      generic.ID // zero until a fund is selected
}

// WithFund returns a copy of s with fundID selected.
func (s Session) WithFund(fundID generic.ID) Session {
	s.FundID = fundID
	return s
}

func (s Session) HasFund() bool { return !s.FundID.IsZero() }

// RequireFund returns a Validation error when no fund is selected.
func (s Session) RequireFund() (generic.ID, error) {
	if !s.HasFund() {
		return "", generic.Validation("Select a fund first")
	}
	return s.FundID, nil
}
