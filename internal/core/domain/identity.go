package domain

// Identity is the logged-in actor as asserted by the external authentication
// service. The core never builds one from scratch, it only validates and
// caches what it was handed.
type Identity struct {
	SubjectID string `json:"subject_id"`
	Role      Role   `json:"role"`
	Onboarded bool   `json:"onboarded"`
}

// Session binds an Identity to the opaque bearer credential it was issued
// with. The credential is forwarded as-is and never inspected.
type Session struct {
	Identity   Identity
	Credential string
}

// NeedsOnboarding reports whether the identity still has to complete its
// role's onboarding step.
func (i Identity) NeedsOnboarding() bool {
	return i.Role.RequiresOnboarding() && !i.Onboarded
}

// Valid reports whether every field is populated and consistent.
func (s Session) Valid() bool {
	return s.Identity.SubjectID != "" && s.Identity.Role.Valid() && s.Credential != ""
}
