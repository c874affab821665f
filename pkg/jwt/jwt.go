package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret se devuelve cuando no hay JWT_SECRET configurado.
var ErrEmptySecret = errors.New("jwt: secret vacío")

// ErrMissingTenant el token no identifica usuario o empresa; las sesiones de entrega son por empresa.
var ErrMissingTenant = errors.New("jwt: token sin usuario o empresa")

// Claims claims estándar más la identidad del despachador.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"` // "admin" | "despachador"
}

// Validate lo invoca el parser después de validar exp/iat.
func (c Claims) Validate() error {
	if c.UserID == "" || c.CompanyID == "" {
		return ErrMissingTenant
	}
	return nil
}

// Generate firma con HS256 un token para userID dentro de companyID.
func Generate(secret, userID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma, expiración y tenant; devuelve userID, companyID y role.
func Parse(secret, tokenString string) (userID, companyID, role string, err error) {
	if secret == "" {
		return "", "", "", ErrEmptySecret
	}
	var claims Claims
	_, err = jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return "", "", "", fmt.Errorf("jwt: %w", err)
	}
	return claims.UserID, claims.CompanyID, claims.Role, nil
}
