package domain

// ProposalFilter narrows FindByWeek results. Nil fields match everything.
type ProposalFilter struct {
	Active *bool
	Winner *bool
}

// Bool returns a pointer to v, for filter literals
func Bool(v bool) *bool {
	return &v
}
