package domain

// TargetAudience restricts which subjects a test may include. All configured
// predicates must hold (AND); an unset predicate matches everyone.
type TargetAudience struct {
	BetaCohortOnly  bool     `json:"beta_cohort_only,omitempty"`
	CompanySizes    []string `json:"company_sizes,omitempty"` // allowed company-size classes; empty = any
	WorkTypes       []string `json:"work_types,omitempty"`    // subject matches if any listed work type intersects; empty = any
	MinSessionCount int      `json:"min_session_count,omitempty"` // 0 = any
}

// AudienceContext is the caller-supplied snapshot of a subject's attributes
// at assignment time. The engine never fetches this itself.
type AudienceContext struct {
	BetaCohort   bool
	CompanySize  string
	WorkTypes    []string
	SessionCount int
}

// Matches reports whether the subject described by ctx belongs to the
// audience.
func (a TargetAudience) Matches(ctx AudienceContext) bool {
	if a.BetaCohortOnly && !ctx.BetaCohort {
		return false
	}
	if len(a.CompanySizes) > 0 && !containsString(a.CompanySizes, ctx.CompanySize) {
		return false
	}
	if len(a.WorkTypes) > 0 && !intersects(a.WorkTypes, ctx.WorkTypes) {
		return false
	}
	if a.MinSessionCount > 0 && ctx.SessionCount < a.MinSessionCount {
		return false
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, s := range b {
		if containsString(a, s) {
			return true
		}
	}
	return false
}
