package auth_test

import (
	"testing"
	"time"

	"go-hris-leave/internal/auth"
	autherrors "go-hris-leave/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const secret = "test-secret-0123456789"

func TestParseToken(t *testing.T) {
	t.Run("success - numeric employee id", func(t *testing.T) {
		token, err := auth.GenerateToken(secret, auth.Identity{EmployeeID: 42, Role: "manager"}, time.Minute)
		assert.NoError(t, err)

		id, err := auth.ParseToken(secret, token)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), id.EmployeeID)
		assert.Equal(t, "manager", id.Role)
	})

	t.Run("success - string employee id and default role", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"employee_id": "17",
			"exp":         time.Now().Add(time.Minute).Unix(),
		})
		signed, _ := token.SignedString([]byte(secret))

		id, err := auth.ParseToken(secret, signed)

		assert.NoError(t, err)
		assert.Equal(t, int64(17), id.EmployeeID)
		assert.Equal(t, auth.DefaultRole, id.Role)
	})

	t.Run("negative - empty token", func(t *testing.T) {
		_, err := auth.ParseToken(secret, "")
		assert.ErrorIs(t, err, autherrors.ErrTokenNotFound)
	})

	t.Run("negative - wrong secret", func(t *testing.T) {
		token, _ := auth.GenerateToken("another-secret-987654321", auth.Identity{EmployeeID: 1}, time.Minute)

		_, err := auth.ParseToken(secret, token)

		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("negative - expired", func(t *testing.T) {
		token, _ := auth.GenerateToken(secret, auth.Identity{EmployeeID: 1}, -time.Minute)

		_, err := auth.ParseToken(secret, token)

		assert.ErrorIs(t, err, autherrors.ErrTokenExpired)
	})

	t.Run("negative - missing employee id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"role": "admin",
			"exp":  time.Now().Add(time.Minute).Unix(),
		})
		signed, _ := token.SignedString([]byte(secret))

		_, err := auth.ParseToken(secret, signed)

		assert.ErrorIs(t, err, autherrors.ErrMissingEmployee)
	})
}
