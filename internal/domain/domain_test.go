package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"Admin", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{" SELLER ", RoleSeller, true},
		{"Customer", RoleCustomer, true},
		{"superuser", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRole(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestIdentity_JSONRoundTripKeepsRole(t *testing.T) {
	for _, role := range Roles {
		in := Identity{ID: "7", Email: "a@b.c", FirstName: "Ann", LastName: "Lee", Role: role}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Identity
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, in, out)
	}
}

func TestIdentity_UnmarshalNormalizesRole(t *testing.T) {
	var id Identity
	require.NoError(t, json.Unmarshal([]byte(`{"email":"x@y.z","role":"seller"}`), &id))
	assert.Equal(t, RoleSeller, id.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"email":"x@y.z","role":"root"}`), &id))
	assert.Equal(t, Role(""), id.Role)
}

func TestIdentity_SameEmail(t *testing.T) {
	id := Identity{Email: "Seller@Shop.com"}
	assert.True(t, id.SameEmail("seller@shop.com"))
	assert.False(t, id.SameEmail("other@shop.com"))
	assert.False(t, id.SameEmail(""))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFoundError(fmt.Errorf("get: %w", ErrProductNotFound)))
	assert.True(t, IsValidationError(ErrInvalidPrice))
	assert.True(t, IsPermissionError(ErrNotProductOwner))
	assert.False(t, IsNotFoundError(ErrInvalidPrice))
}
