package models

// SessionTypeProfile is the small per-variant constants table referenced by
// spec Design Notes: each session type carries its own default session
// length (used when SessionState hasn't set one yet) and its own hint
// budget (used by the completion pipeline's efficiency scoring).
type SessionTypeProfile struct {
	DefaultSessionLength int
	HintCap              int
}

var sessionTypeProfiles = map[SessionType]SessionTypeProfile{
	SessionTypeStandard:      {DefaultSessionLength: 5, HintCap: 3},
	SessionTypeTracking:      {DefaultSessionLength: 5, HintCap: 3},
	SessionTypeInterviewLike: {DefaultSessionLength: 3, HintCap: 1},
	SessionTypeFullInterview: {DefaultSessionLength: 1, HintCap: 0},
}

// ProfileFor returns t's constants table entry, falling back to the
// standard profile for an unrecognized type.
func ProfileFor(t SessionType) SessionTypeProfile {
	if p, ok := sessionTypeProfiles[t]; ok {
		return p
	}
	return sessionTypeProfiles[SessionTypeStandard]
}
