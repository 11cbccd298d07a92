package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMarshalJSON(t *testing.T) {
	company := "Acme"

	tests := []struct {
		name    string
		profile Profile
		want    Role
	}{
		{"student", StudentProfile{}, RoleStudent},
		{"alumni", AlumniProfile{Company: &company}, RoleAlumni},
		{"admin", AdminProfile{}, RoleAdmin},
	}

	for _, tt := range tests {
		t.Run("should include the "+tt.name+" role", func(t *testing.T) {
			user := &User{ID: 1, Name: "Alex", PasswordHash: "hash", Profile: tt.profile}

			data, err := json.Marshal(user)
			require.NoError(t, err)

			var body map[string]any
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, string(tt.want), body["role"])
			assert.Equal(t, "Alex", body["name"])
			assert.Contains(t, body, "profile")
			assert.NotContains(t, body, "password_hash")
			assert.NotContains(t, body, "PasswordHash")
		})
	}

	t.Run("should marshal values and pointers the same way", func(t *testing.T) {
		user := User{ID: 2, Profile: StudentProfile{}}

		byValue, err := json.Marshal(user)
		require.NoError(t, err)
		byPointer, err := json.Marshal(&user)
		require.NoError(t, err)
		assert.JSONEq(t, string(byValue), string(byPointer))
	})
}
