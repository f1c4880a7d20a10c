// Package permissions encodes which staff roles may perform which clinical
// actions. Roles are a closed set; anything outside it is denied everything.
package permissions

// Staff roles
const (
	RoleVet          = "Vet"
	RoleNurse        = "Nurse"
	RoleACA          = "ACA"
	RoleReceptionist = "Receptionist"
)

// ValidRole reports whether the role is one of the recognised staff roles.
func ValidRole(role string) bool {
	switch role {
	case RoleVet, RoleNurse, RoleACA, RoleReceptionist:
		return true
	}
	return false
}

// CanAdministerDrugs reports whether a staff member with the given role may
// record a drug administration. Only certified vets may.
func CanAdministerDrugs(role string) bool {
	return role == RoleVet
}

// CanMonitorAnaesthetic reports whether the role may open an anaesthetic
// monitoring sheet.
func CanMonitorAnaesthetic(role string) bool {
	return role == RoleVet || role == RoleNurse
}
