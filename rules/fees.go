package rules

// Fee is the registration fee breakdown for one team. Amounts are whole
// rupees.
type Fee struct {
	Base        int64 `json:"base"`
	ExtraCount  int   `json:"extraCount"`
	ExtraAmount int64 `json:"extraAmount"`
	Total       int64 `json:"total"`
}

// ComputeFee prices a team's registration: a flat base fee (reduced for the
// teams flagged in the catalog) covers the first FreePlayers participants,
// every player past that adds the per-player surcharge.
func (r *Rules) ComputeFee(participantCount int, teamID string) Fee {
	if participantCount < 0 {
		participantCount = 0
	}
	base := r.cfg.Fees.BaseFee
	if t, ok := r.cfg.FindTeam(teamID); ok && t.ReducedFee {
		base = r.cfg.Fees.ReducedBaseFee
	}
	if participantCount <= r.cfg.Fees.FreePlayers {
		return Fee{Base: base, Total: base}
	}
	extra := participantCount - r.cfg.Fees.FreePlayers
	amount := int64(extra) * r.cfg.Fees.ExtraPerPlayer
	return Fee{Base: base, ExtraCount: extra, ExtraAmount: amount, Total: base + amount}
}
