package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		action Action
		allow  bool
	}{
		{name: "owner delete", role: RoleOwner, action: ActionDelete, allow: true},
		{name: "admin delete", role: RoleAdmin, action: ActionDelete, allow: true},
		{name: "admin create", role: RoleAdmin, action: ActionCreate, allow: true},
		{name: "editor view", role: RoleEditor, action: ActionView, allow: true},
		{name: "editor create", role: RoleEditor, action: ActionCreate, allow: true},
		{name: "editor update", role: RoleEditor, action: ActionUpdate, allow: true},
		{name: "editor delete", role: RoleEditor, action: ActionDelete, allow: false},
		{name: "viewer view", role: RoleViewer, action: ActionView, allow: true},
		{name: "viewer create", role: RoleViewer, action: ActionCreate, allow: false},
		{name: "viewer update", role: RoleViewer, action: ActionUpdate, allow: false},
		{name: "viewer delete", role: RoleViewer, action: ActionDelete, allow: false},
		{name: "unknown role", role: Role("ghost"), action: ActionView, allow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allow, Can(tt.role, tt.action))
		})
	}
}

func TestCanTouchScript(t *testing.T) {
	const author, other = int64(1), int64(2)

	tests := []struct {
		name  string
		role  Role
		user  int64
		allow bool
	}{
		{name: "owner touches any script", role: RoleOwner, user: other, allow: true},
		{name: "admin touches any script", role: RoleAdmin, user: other, allow: true},
		{name: "editor touches own script", role: RoleEditor, user: author, allow: true},
		{name: "editor denied on foreign script", role: RoleEditor, user: other, allow: false},
		{name: "viewer denied on own script", role: RoleViewer, user: author, allow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allow, CanTouchScript(tt.role, author, tt.user))
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
