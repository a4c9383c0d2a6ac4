package domain

// FreezeCapacity is declared capacity for streak freezes: days that could
// shield a streak from a missed check-in. The monthly cap comes from the
// entitlement collaborator.
//
// No streak transition consumes this yet. Wiring a freeze into RecordCheckIn
// (so a covered missed day does not reset the streak) is a declared extension
// point awaiting product semantics.
type FreezeCapacity struct {
	Remaining     int `json:"freeze_days_remaining"`
	UsedThisMonth int `json:"freeze_days_used_this_month"`
	MonthlyCap    int `json:"max_freeze_days_per_month"`
}

func NewFreezeCapacity(monthlyCap int) FreezeCapacity {
	if monthlyCap < 0 {
		monthlyCap = 0
	}

	return FreezeCapacity{
		Remaining:  monthlyCap,
		MonthlyCap: monthlyCap,
	}
}

// CoversGap reports whether the remaining capacity could cover a run of missed
// days. Advisory only until a transition consumes freezes.
func (f FreezeCapacity) CoversGap(missedDays int) bool {
	return missedDays > 0 && missedDays <= f.Remaining
}

// RollOver starts a fresh monthly window.
func (f FreezeCapacity) RollOver() FreezeCapacity {
	f.UsedThisMonth = 0
	f.Remaining = f.MonthlyCap
	return f
}
