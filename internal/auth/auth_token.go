package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	autherrors "go-hris-leave/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultRole = "employee"

// Identity is what a verified access token says about its bearer.
type Identity struct {
	EmployeeID int64
	Role       string
}

// ParseToken verifies an HS256 access token and extracts the identity.
// employee_id may be encoded as a JSON number or a decimal string.
func ParseToken(secret, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, autherrors.ErrTokenNotFound
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, autherrors.ErrTokenExpired
		}
		return Identity{}, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, autherrors.ErrInvalidToken
	}

	employeeID, ok := claimInt64(claims["employee_id"])
	if !ok || employeeID <= 0 {
		return Identity{}, autherrors.ErrMissingEmployee
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = DefaultRole
	}

	return Identity{EmployeeID: employeeID, Role: role}, nil
}

// GenerateToken signs an access token for id that expires after expiry.
func GenerateToken(secret string, id Identity, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"employee_id": id.EmployeeID,
		"role":        id.Role,
		"exp":         time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", autherrors.ErrTokenGenerationFailed
	}
	return signed, nil
}

func claimInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), n == float64(int64(n))
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
