package authroles

import (
	domainauth "github.com/quillhq/quill/internal/domain/auth"
)

// StaticRoleMapper maps provider groups to application roles by simple
// string membership rules. Users that match neither configured group are
// admitted as guests.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
