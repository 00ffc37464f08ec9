package rbac

import "testing"

func TestRoleValid(t *testing.T) {
	cases := map[Role]bool{
		RoleAdmin:     true,
		RoleUser:      true,
		"":            false,
		"super_admin": false,
		"Admin":       false,
	}
	for role, want := range cases {
		if got := role.Valid(); got != want {
			t.Fatalf("Role(%q).Valid() = %v, want %v", role, got, want)
		}
	}
}
