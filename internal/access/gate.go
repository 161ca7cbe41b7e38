// Package access implements the authorization decisions of the service:
// the flat role allow-list gate shared by the QR management endpoints,
// the app-tier gate, and the physical entry decision pipeline.  Every
// function takes the caller's identity as explicit arguments; nothing in
// this package reads ambient request state.
package access

// Role names referenced by the allow-lists.  These mirror the rows of the
// static role table: 1 admin, 2 receptionist, 3 coach, 4 manager,
// 5 client, 6 maintenance.
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
)

// App identifiers accepted by the app-tier gate.
const (
	AppDesktop = "AppDesktop"
	AppWeb     = "AppWeb"
	AppMovil   = "AppMovil"
)

// RoleClientID is the role id of gym members.  All other role ids are
// staff tiers.
const RoleClientID uint64 = 5

// Allow is the single role-gate predicate used by every handler.  It
// grants when the requester's role name is in the allow-list, or when
// selfService is set and the requester is acting on their own resource.
// The self exception covers QR fetch/generate; QR delete passes
// selfService=false and stays privileged-only.
func Allow(requesterRole string, requesterID, targetID uint64, selfService bool, allowed ...string) bool {
	for _, r := range allowed {
		if requesterRole == r {
			return true
		}
	}
	return selfService && requesterID == targetID
}

// AppAllowed decides the app-tier gate: staff role ids {1,2,3,4,6} may
// use the desktop app only; clients (role 5) may use the web or mobile
// app only.  Every other combination is denied.
func AppAllowed(roleID uint64, app string) bool {
	if roleID == RoleClientID {
		return app == AppWeb || app == AppMovil
	}
	switch roleID {
	case 1, 2, 3, 4, 6:
		return app == AppDesktop
	}
	return false
}
