// devtoken emite un JWT de desarrollo para probar la API de entregas sin servicio de identidad.
//
// Uso: go run ./cmd/devtoken [rol] [empresa] [usuario]
// Por defecto: rol despachador, empresa y usuario generados. El secreto, el emisor y la
// expiración se leen igual que en la API (JWT_SECRET, JWT_ISSUER, JWT_EXPIRATION_MINUTES).
// Escribe en la salida estándar la línea lista para el encabezado Authorization.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jhoicas/Entregas-api/pkg/config"
	"github.com/jhoicas/Entregas-api/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET vacío: defina el mismo secreto que usa la API")
		os.Exit(1)
	}

	role, companyID, userID := "despachador", uuid.NewString(), uuid.NewString()
	if len(os.Args) > 1 {
		role = os.Args[1]
	}
	if len(os.Args) > 2 {
		companyID = os.Args[2]
	}
	if len(os.Args) > 3 {
		userID = os.Args[3]
	}
	if role != "admin" && role != "despachador" {
		fmt.Fprintf(os.Stderr, "Rol desconocido %q (admin | despachador)\n", role)
		os.Exit(1)
	}

	token, err := jwt.Generate(cfg.JWT.Secret, userID, companyID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "empresa=%s usuario=%s rol=%s expira en %d min\n", companyID, userID, role, cfg.JWT.Expiration)
	fmt.Printf("Bearer %s\n", token)
}
