package authroles

import (
	"testing"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{"admin group", []string{"admins"}, domainauth.RoleAdmin},
		{"user group", []string{"users"}, domainauth.RoleUser},
		{"admin wins over user", []string{"users", "admins"}, domainauth.RoleAdmin},
		{"no match", []string{"other"}, domainauth.RoleGuest},
		{"empty groups", nil, domainauth.RoleGuest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Map(tt.groups); got != tt.want {
				t.Fatalf("Map(%v) = %s, want %s", tt.groups, got, tt.want)
			}
		})
	}
}

func TestStaticRoleMapper_EmptyConfig(t *testing.T) {
	m := StaticRoleMapper{}
	if got := m.Map([]string{"admins", "users"}); got != domainauth.RoleGuest {
		t.Fatalf("Map with empty config = %s, want GUEST", got)
	}
}
