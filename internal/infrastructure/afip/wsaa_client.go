package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ── Constantes de entorno ─────────────────────────────────────────────────────

const (
	// EnvProduction entorno productivo AFIP.
	EnvProduction = "production"
	// EnvTesting entorno de homologación AFIP.
	EnvTesting = "testing"

	wsaaURLProd = "https://wsaa.afip.gov.ar/ws/services/LoginCms"
	wsaaURLHomo = "https://wsaahomo.afip.gov.ar/ws/services/LoginCms"

	soapEnvNS  = "http://schemas.xmlsoap.org/soap/envelope/"
	wsaaNS     = "https://wsaa.view.sua.dvadac.desein.afip.gov"
	excerptLen = 500
)

// ── Resultado ─────────────────────────────────────────────────────────────────

// LoginResult triple emitido por el WSAA tras un loginCms exitoso.
type LoginResult struct {
	Token      string
	Sign       string
	Expiration time.Time
}

// ── Cliente ───────────────────────────────────────────────────────────────────

// WSAAClient cliente SOAP del servicio de autenticación de AFIP.
// BaseURL permite redirigir a un servidor de prueba; vacío usa los endpoints
// oficiales según entorno.
type WSAAClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewWSAAClient construye el cliente con el timeout de red indicado.
// El WSAA puede tardar varios segundos; 30 s es un valor razonable.
func NewWSAAClient(timeout time.Duration) *WSAAClient {
	return &WSAAClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras SOAP ──────────────────────────────────────────────────────────

type wsaaEnvelope struct {
	XMLName xml.Name     `xml:"soapenv:Envelope"`
	XmlnsS  string       `xml:"xmlns:soapenv,attr"`
	XmlnsW  string       `xml:"xmlns:wsaa,attr"`
	Header  struct{}     `xml:"soapenv:Header"`
	Body    wsaaLoginCms `xml:"soapenv:Body>wsaa:loginCms"`
}

type wsaaLoginCms struct {
	In0 string `xml:"wsaa:in0"` // CMS firmado en Base64
}

// ── LoginCms ──────────────────────────────────────────────────────────────────

// LoginCms envía el CMS firmado al WSAA del entorno y devuelve el triple
// {token, sign, expiración}. Cualquier fallo de red, fault SOAP o respuesta
// sin token/sign se devuelve como un único error descriptivo; acá no se
// reintenta nunca (emitir un ticket tiene efectos en AFIP).
func (c *WSAAClient) LoginCms(ctx context.Context, cmsB64, entorno string) (*LoginResult, error) {
	url, err := c.endpoint(entorno)
	if err != nil {
		return nil, err
	}

	envelope := wsaaEnvelope{
		XmlnsS: soapEnvNS,
		XmlnsW: wsaaNS,
		Body:   wsaaLoginCms{In0: cmsB64},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wsaa: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wsaa: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml;charset=UTF-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wsaa: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("wsaa: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("wsaa: leer respuesta: %w", err)
	}

	return parseLoginResponse(rawBody)
}

func (c *WSAAClient) endpoint(entorno string) (string, error) {
	if c.BaseURL != "" {
		return c.BaseURL, nil
	}
	switch entorno {
	case EnvProduction:
		return wsaaURLProd, nil
	case EnvTesting:
		return wsaaURLHomo, nil
	default:
		return "", fmt.Errorf("wsaa: entorno desconocido %q (usar %q o %q)", entorno, EnvProduction, EnvTesting)
	}
}

// parseLoginResponse extrae token/sign/expirationTime del loginTicketResponse.
// El WSAA devuelve el ticket XML escapado dentro de <loginCmsReturn>; etree lo
// desescapa como texto, que se vuelve a parsear.
func parseLoginResponse(rawBody []byte) (*LoginResult, error) {
	inner := rawBody
	if ret, ok := LeafText(rawBody, "loginCmsReturn"); ok {
		inner = []byte(ret)
	}

	token, okT := LeafText(inner, "token")
	sign, okS := LeafText(inner, "sign")
	if !okT || !okS || token == "" || sign == "" {
		return nil, fmt.Errorf("wsaa: %s", loginFailureDetail(rawBody))
	}

	expRaw, _ := LeafText(inner, "expirationTime")
	exp, err := parseExpiration(expRaw)
	if err != nil {
		return nil, fmt.Errorf("wsaa: expirationTime %q inválido: %w", expRaw, err)
	}

	return &LoginResult{Token: token, Sign: sign, Expiration: exp}, nil
}

// loginFailureDetail arma el detalle de error para una respuesta sin
// token/sign: faultstring/faultcode si existen, o un extracto del cuerpo.
// Nunca devuelve un mensaje vacío.
func loginFailureDetail(rawBody []byte) string {
	faultString, okS := LeafText(rawBody, "faultstring")
	faultCode, okC := LeafText(rawBody, "faultcode")
	switch {
	case okS && okC:
		return fmt.Sprintf("fault SOAP [%s]: %s", faultCode, faultString)
	case okS:
		return "fault SOAP: " + faultString
	}
	excerpt := Excerpt(rawBody, excerptLen)
	if excerpt == "" {
		excerpt = "(cuerpo vacío)"
	}
	return "respuesta sin token/sign: " + excerpt
}

// parseExpiration tolera las variantes de fecha que emite el WSAA
// (con offset -03:00, con milisegundos, o truncada al segundo).
func parseExpiration(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05.999-07:00",
		time.RFC3339,
		traTimeLayout,
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
