package model

import (
	"strings"
	"testing"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	valid := CreateUserRequest{
		Email:        "a@example.com",
		Name:         "alice",
		PasswordHash: "$2a$10$hash",
	}

	tests := []struct {
		name    string
		mutate  func(*CreateUserRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(_ *CreateUserRequest) {}},
		{name: "valid with role", mutate: func(r *CreateUserRequest) { r.Role = domainauth.RoleAdmin }},
		{name: "missing email", mutate: func(r *CreateUserRequest) { r.Email = "" }, wantErr: true},
		{name: "bad email", mutate: func(r *CreateUserRequest) { r.Email = "not-an-address" }, wantErr: true},
		{name: "long email", mutate: func(r *CreateUserRequest) { r.Email = strings.Repeat("x", 250) + "@example.com" }, wantErr: true},
		{name: "missing name", mutate: func(r *CreateUserRequest) { r.Name = "  " }, wantErr: true},
		{name: "name with spaces", mutate: func(r *CreateUserRequest) { r.Name = "a b" }, wantErr: true},
		{name: "long name", mutate: func(r *CreateUserRequest) { r.Name = strings.Repeat("a", 65) }, wantErr: true},
		{name: "bad role", mutate: func(r *CreateUserRequest) { r.Role = "WIZARD" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got none")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUser_Principal(t *testing.T) {
	u := User{ID: "u-1", Role: domainauth.RoleUser}
	p := u.Principal()
	if p.UserID != "u-1" || p.Role != domainauth.RoleUser {
		t.Fatalf("unexpected principal: %+v", p)
	}
}
