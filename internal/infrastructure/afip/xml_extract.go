package afip

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Extracción de hojas XML por nombre local, ignorando prefijos de namespace.
// Las respuestas SOAP de AFIP no siempre son rígidas al esquema; el contrato
// aquí es "mejor esfuerzo, nunca crash".

// LeafText devuelve el texto del primer elemento con el nombre local dado,
// sin importar el prefijo de namespace. Si el documento no parsea como XML se
// recurre a una extracción por regex como último recurso (fragmentos
// malformados de AFIP).
func LeafText(raw []byte, local string) (string, bool) {
	if el := findByLocal(parseLoose(raw), local); el != nil {
		return strings.TrimSpace(el.Text()), true
	}
	return leafTextRegex(raw, local)
}

// LeafTextWithin devuelve el texto de la primera hoja `local` dentro del
// primer elemento `parent` (ej: el <Msg> de un bloque <Err>).
func LeafTextWithin(raw []byte, parent, local string) (string, bool) {
	p := findByLocal(parseLoose(raw), parent)
	if p == nil {
		return "", false
	}
	if el := findByLocal(p, local); el != nil {
		return strings.TrimSpace(el.Text()), true
	}
	return "", false
}

// HasLocal indica si existe algún elemento con el nombre local dado.
func HasLocal(raw []byte, local string) bool {
	return findByLocal(parseLoose(raw), local) != nil
}

// Excerpt devuelve los primeros n bytes del cuerpo como texto, para mensajes
// de error cuando la respuesta no tiene los campos esperados.
func Excerpt(raw []byte, n int) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > n {
		return s[:n]
	}
	return s
}

// parseLoose parsea tolerando ISO-8859-1 (WSAA histórico) además de UTF-8.
// Devuelve nil si el documento no parsea.
func parseLoose(raw []byte) *etree.Element {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := doc.ReadFromBytes(bytes.TrimSpace(raw)); err != nil {
		return nil
	}
	return doc.Root()
}

// findByLocal busca en profundidad el primer elemento cuyo Tag (nombre local,
// sin prefijo) coincida. Incluye al propio elemento raíz.
func findByLocal(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.Tag == local {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findByLocal(child, local); found != nil {
			return found
		}
	}
	return nil
}

// leafTextRegex extrae <local>texto</local> por patrón, tolerando prefijos y
// atributos. Último recurso documentado: solo se llega aquí con XML malformado.
func leafTextRegex(raw []byte, local string) (string, bool) {
	re := regexp.MustCompile(`(?s)<(?:\w+:)?` + regexp.QuoteMeta(local) + `[^>]*>(.*?)</(?:\w+:)?` + regexp.QuoteMeta(local) + `>`)
	m := re.FindSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(string(m[1])), true
}
