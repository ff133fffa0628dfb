package models_test

import (
	"testing"

	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	user := &models.User{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "client@test.com",
		UserType:  models.UserTypeClient,
	}

	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{ID: existingID, Email: "a@b.c", UserType: models.UserTypeClient}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID)
}

func TestUserPasswordHashing(t *testing.T) {
	user := &models.User{Email: "client@test.com", UserType: models.UserTypeClient}

	err := user.SetPassword("123456")
	assert.NoError(t, err)
	assert.NotEqual(t, "123456", user.Password, "password must be stored hashed")

	assert.True(t, user.CheckPassword("123456"))
	assert.False(t, user.CheckPassword("wrong-password"))
	assert.False(t, user.CheckPassword(""))
}

func TestUserIsCounselor(t *testing.T) {
	tests := []struct {
		name     string
		userType string
		want     bool
	}{
		{"counselor account", models.UserTypeCounselor, true},
		{"client account", models.UserTypeClient, false},
		{"empty type", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := models.User{UserType: tt.userType}
			assert.Equal(t, tt.want, u.IsCounselor())
		})
	}
}
