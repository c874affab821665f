package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Entregas-api/pkg/jwt"
)

const secret = "secreto-de-pruebas-suficientemente-largo"

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", "c-1", "despachador", "entregas-api", 5)
	require.NoError(t, err)

	user, company, role, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user)
	assert.Equal(t, "c-1", company)
	assert.Equal(t, "despachador", role)
}

func TestParse_SinEmpresaSeRechaza(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", "", "admin", "entregas-api", 5)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, tok)
	assert.ErrorIs(t, err, jwt.ErrMissingTenant)
}

func TestParse_OtroAlgoritmoSeRechaza(t *testing.T) {
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u-1",
		CompanyID:        "c-1",
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, tok)
	assert.ErrorIs(t, err, gojwt.ErrTokenSignatureInvalid, "solo se acepta HS256")
}

func TestParse_SinExpiracionSeRechaza(t *testing.T) {
	claims := jwt.Claims{UserID: "u-1", CompanyID: "c-1"}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, tok)
	assert.ErrorIs(t, err, gojwt.ErrTokenRequiredClaimMissing)
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u", "c", "admin", "x", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
	_, _, _, err = jwt.Parse("", "a.b.c")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}
