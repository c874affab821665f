package tally

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/Entregas-api/internal/domain/delivery"
)

// Campos que, con contenido, indican rechazo. El orden define cuál mensaje se reporta.
var errorFields = []string{"LINEERROR", "ERROR", "ERRORMSG", "ERRORMESSAGE", "MESSAGE"}

var (
	prologRe = regexp.MustCompile(`<\?xml[^>]*\?>`)
	// Frases típicas de rechazo en respuestas que no traen campos estructurados.
	fallbackRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([^<>\r\n]*\bdoes not exist\b[^<>\r\n]*)`),
		regexp.MustCompile(`(?i)([^<>\r\n]*\bcould not\b[^<>\r\n]*)`),
		regexp.MustCompile(`(?i)([^<>\r\n]*\b(?:not found|mismatch|do not match)\b[^<>\r\n]*)`),
		regexp.MustCompile(`(?i)\berror\s*:\s*([^<>\r\n]+)`),
	}
	// Texto que en realidad es un nombre de etiqueta ("LINEERROR", "</ERRORS>").
	tagLikeRe = regexp.MustCompile(`^(?:</?[A-Za-z_.:]+/?>|[A-Z][A-Z0-9_.]*)$`)
)

// responseDoc acceso a campos de la respuesta; si el XML no parsea se recurre a expresiones regulares.
type responseDoc struct {
	root *etree.Element
	raw  string
}

func newResponseDoc(raw string) *responseDoc {
	body := prologRe.ReplaceAllString(raw, "")
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<RESPONSEWRAPPER>" + body + "</RESPONSEWRAPPER>"); err != nil {
		return &responseDoc{raw: raw}
	}
	return &responseDoc{root: doc.Root(), raw: raw}
}

// field primer valor no vacío del campo en cualquier nivel (raíz o anidado en el cuerpo).
func (d *responseDoc) field(tag string) (string, bool) {
	if d.root != nil {
		for _, el := range d.root.FindElements(".//" + tag) {
			if v := strings.TrimSpace(el.Text()); v != "" {
				return v, true
			}
		}
		return "", false
	}
	re := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(tag) + `(?:\s[^>]*)?>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	for _, m := range re.FindAllStringSubmatch(d.raw, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}

func (d *responseDoc) counter(tag string) int {
	v, ok := d.field(tag)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// InterpretResponse clasifica la respuesta del sistema contable. Reglas, en orden:
//  0. un sobre JSON del conector con error o mensaje es falla con ese texto;
//  1. contador ERRORS > 0 es falla; el mensaje sale de LINEERROR u otros campos de error;
//  2. cualquier campo de error con texto (o EXCEPTIONS > 0) es falla;
//  3. frases de rechazo reconocidas en el texto plano son falla;
//  4. en cualquier otro caso es éxito, resumido con los contadores.
func InterpretResponse(raw string) delivery.ImportResult {
	trimmed := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if trimmed == "" {
		return delivery.ImportResult{Message: "Empty response from ledger system"}
	}
	if strings.HasPrefix(trimmed, "{") {
		if msg := jsonErrorText(trimmed); msg != "" {
			return delivery.ImportResult{Message: msg}
		}
	}
	doc := newResponseDoc(trimmed)
	res := delivery.ImportResult{
		Created:    doc.counter("CREATED"),
		Altered:    doc.counter("ALTERED"),
		Deleted:    doc.counter("DELETED"),
		Errors:     doc.counter("ERRORS"),
		Exceptions: doc.counter("EXCEPTIONS"),
	}
	res.LastVchID, _ = doc.field("LASTVCHID")

	if res.Errors > 0 {
		msg := firstErrorText(doc, res)
		if msg == "" {
			msg = fmt.Sprintf("%d error(s) reported by ledger system", res.Errors)
		}
		res.Message = msg
		return res
	}
	if msg := firstErrorText(doc, res); msg != "" {
		res.Message = msg
		return res
	}
	if res.Exceptions > 0 {
		res.Message = fmt.Sprintf("%d exception(s) reported by ledger system", res.Exceptions)
		return res
	}
	if msg := fallbackMessage(trimmed); msg != "" {
		res.Message = msg
		return res
	}

	res.Succeeded = true
	res.Message = successMessage(res)
	return res
}

func jsonErrorText(body string) string {
	var e errorDTO
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return strings.TrimSpace(e.Error)
	}
	return strings.TrimSpace(e.Message)
}

func firstErrorText(doc *responseDoc, res delivery.ImportResult) string {
	for _, tag := range errorFields {
		// MESSAGE acompaña también respuestas exitosas: solo cuenta si nada se importó.
		if tag == "MESSAGE" && res.Created+res.Altered+res.Deleted > 0 && res.Errors == 0 {
			continue
		}
		v, ok := doc.field(tag)
		if !ok || isZeroCounter(v) {
			continue
		}
		return v
	}
	return ""
}

func fallbackMessage(raw string) string {
	for _, re := range fallbackRes {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			candidate := strings.TrimSpace(m[1])
			if candidate == "" || tagLikeRe.MatchString(candidate) {
				continue
			}
			return candidate
		}
	}
	return ""
}

func isZeroCounter(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n == 0
}

func successMessage(r delivery.ImportResult) string {
	total := r.Created + r.Altered + r.Deleted
	if total == 0 {
		return "Voucher imported successfully"
	}
	noun := "vouchers"
	if total == 1 {
		noun = "voucher"
	}
	return fmt.Sprintf("%d %s processed (%d created, %d altered, %d deleted)", total, noun, r.Created, r.Altered, r.Deleted)
}
