package tally

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"

	"github.com/ucarion/c14n"
)

// Fingerprint huella SHA-256 (hex) del comprobante en forma canónica. Dos envíos del mismo
// contenido producen la misma huella aunque difieran en espacios entre atributos o en comillas.
func Fingerprint(voucherXML string) (string, error) {
	canonical, err := canonicalizeXML([]byte(voucherXML))
	if err != nil {
		return "", fmt.Errorf("tally: canonicalizar comprobante: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
