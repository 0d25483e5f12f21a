package models

// Capability names a permission checked at route and service boundaries.
type Capability string

const (
	CapProfilesManage  Capability = "profiles:manage"
	CapSchedulesManage Capability = "schedules:manage"
	CapEnrollmentsView Capability = "enrollments:view_all"
	CapPaymentsReview  Capability = "payments:review"
	CapStatsView       Capability = "stats:view"
	CapEnrollmentSelf  Capability = "enrollment:self"
)

// RoleCapabilities maps each role to the capabilities it grants. Admins
// manage the school but do not enroll themselves in classes.
var RoleCapabilities = map[Role][]Capability{
	RoleUser: {CapEnrollmentSelf},
	RoleAdmin: {
		CapProfilesManage,
		CapSchedulesManage,
		CapEnrollmentsView,
		CapPaymentsReview,
		CapStatsView,
	},
}

// Session is the authenticated caller. Handlers build it from the access token
// and pass it explicitly to services.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// NewSession builds a session from validated access token claims.
func NewSession(claims *JWTClaims) *Session {
	if claims == nil {
		return nil
	}
	return &Session{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
}

// Can reports whether the session's role grants capability.
func (s *Session) Can(capability Capability) bool {
	if s == nil {
		return false
	}
	for _, granted := range RoleCapabilities[s.Role] {
		if granted == capability {
			return true
		}
	}
	return false
}
