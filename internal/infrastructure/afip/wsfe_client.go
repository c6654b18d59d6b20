package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ── Constantes ────────────────────────────────────────────────────────────────

const (
	wsfeURLProd = "https://servicios1.afip.gov.ar/wsfev1/service.asmx"
	wsfeURLHomo = "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"

	wsfeNS = "http://ar.gov.afip.dif.FEV1/"

	// ResultadoAprobado valor de <Resultado> cuando AFIP aprueba el comprobante.
	ResultadoAprobado = "A"
)

// ── Tipos ─────────────────────────────────────────────────────────────────────

// Auth credenciales de acceso al WSFE: el ticket WSAA más el CUIT del emisor.
type Auth struct {
	Token string
	Sign  string
	CUIT  string
}

// InvoiceData datos de un comprobante a autorizar (un solo detalle,
// facturación simplificada: neto == total, IVA 0, sin otros tributos).
type InvoiceData struct {
	PuntoVenta int
	TipoCbte   int
	Concepto   int
	DocTipo    int
	DocNro     int64
	CbteDesde  int64
	CbteHasta  int64
	FechaCbte  string // YYYYMMDD
	Total      decimal.Decimal
}

// InvoiceResult resultado de FECAESolicitar. Un rechazo de AFIP (sin CAE) es
// un resultado normal, no un error: ErrorMsg trae la causa legible y
// RawResponse el cuerpo completo para auditoría.
type InvoiceResult struct {
	CAE         string
	CAEFchVto   string
	Resultado   string
	ErrorMsg    string
	RawResponse string
}

// Aprobado indica si AFIP emitió CAE.
func (r *InvoiceResult) Aprobado() bool { return r.CAE != "" }

// ── Cliente ───────────────────────────────────────────────────────────────────

// WSFEClient cliente SOAP del servicio de facturación electrónica WSFEv1.
// Ambas operaciones son stateless: un round-trip SOAP cada una.
type WSFEClient struct {
	httpClient *http.Client
	BaseURL    string // override para tests; vacío usa los endpoints oficiales
}

// NewWSFEClient construye el cliente con el timeout de red indicado.
func NewWSFEClient(timeout time.Duration) *WSFEClient {
	return &WSFEClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras SOAP ──────────────────────────────────────────────────────────

type wsfeEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	XmlnsS  string   `xml:"xmlns:soapenv,attr"`
	XmlnsA  string   `xml:"xmlns:ar,attr"`
	Header  struct{} `xml:"soapenv:Header"`
	Body    wsfeBody `xml:"soapenv:Body"`
}

type wsfeBody struct {
	Content interface{}
}

func (b wsfeBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type wsfeAuth struct {
	Token string `xml:"ar:Token"`
	Sign  string `xml:"ar:Sign"`
	Cuit  string `xml:"ar:Cuit"`
}

type feCompUltimoAutorizado struct {
	XMLName  xml.Name `xml:"ar:FECompUltimoAutorizado"`
	Auth     wsfeAuth `xml:"ar:Auth"`
	PtoVta   int      `xml:"ar:PtoVta"`
	CbteTipo int      `xml:"ar:CbteTipo"`
}

type feCAESolicitar struct {
	XMLName  xml.Name   `xml:"ar:FECAESolicitar"`
	Auth     wsfeAuth   `xml:"ar:Auth"`
	FeCAEReq feCAEReq   `xml:"ar:FeCAEReq"`
}

type feCAEReq struct {
	FeCabReq feCabReq `xml:"ar:FeCabReq"`
	FeDetReq feDetReq `xml:"ar:FeDetReq"`
}

type feCabReq struct {
	CantReg  int `xml:"ar:CantReg"`
	PtoVta   int `xml:"ar:PtoVta"`
	CbteTipo int `xml:"ar:CbteTipo"`
}

type feDetReq struct {
	Detail feCAEDetRequest `xml:"ar:FECAEDetRequest"`
}

type feCAEDetRequest struct {
	Concepto   int    `xml:"ar:Concepto"`
	DocTipo    int    `xml:"ar:DocTipo"`
	DocNro     int64  `xml:"ar:DocNro"`
	CbteDesde  int64  `xml:"ar:CbteDesde"`
	CbteHasta  int64  `xml:"ar:CbteHasta"`
	CbteFch    string `xml:"ar:CbteFch"`
	ImpTotal   string `xml:"ar:ImpTotal"`
	ImpTotConc string `xml:"ar:ImpTotConc"`
	ImpNeto    string `xml:"ar:ImpNeto"`
	ImpOpEx    string `xml:"ar:ImpOpEx"`
	ImpTrib    string `xml:"ar:ImpTrib"`
	ImpIVA     string `xml:"ar:ImpIVA"`
	MonID      string `xml:"ar:MonId"`
	MonCotiz   string `xml:"ar:MonCotiz"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// UltimoAutorizado consulta FECompUltimoAutorizado y devuelve el último número
// de comprobante autorizado para el punto de venta y tipo. Si la respuesta no
// trae <CbteNro> se devuelve 0: todavía no se emitió ningún comprobante para
// esa combinación, no es un error.
func (c *WSFEClient) UltimoAutorizado(ctx context.Context, auth Auth, ptoVta, tipoCbte int, entorno string) (int64, error) {
	body := feCompUltimoAutorizado{
		Auth:     wsfeAuth{Token: auth.Token, Sign: auth.Sign, Cuit: auth.CUIT},
		PtoVta:   ptoVta,
		CbteTipo: tipoCbte,
	}
	rawBody, err := c.call(ctx, entorno, wsfeNS+"FECompUltimoAutorizado", body)
	if err != nil {
		return 0, err
	}

	nroRaw, ok := LeafText(rawBody, "CbteNro")
	if !ok || nroRaw == "" {
		// Sin <CbteNro> y con bloque <Err> es un rechazo del servicio (token
		// vencido, pto vta inexistente...), no una numeración virgen.
		if HasLocal(rawBody, "Err") {
			msg, _ := LeafTextWithin(rawBody, "Err", "Msg")
			if msg == "" {
				msg = Excerpt(rawBody, excerptLen)
			}
			return 0, fmt.Errorf("wsfe: último autorizado rechazado: %s", msg)
		}
		return 0, nil
	}
	nro, err := strconv.ParseInt(nroRaw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wsfe: CbteNro %q no numérico: %w", nroRaw, err)
	}
	return nro, nil
}

// SolicitarCAE envía FECAESolicitar con un único detalle. Nunca devuelve error
// por un rechazo de AFIP (eso va en el resultado); el error se reserva para
// fallos de transporte.
func (c *WSFEClient) SolicitarCAE(ctx context.Context, auth Auth, data InvoiceData, entorno string) (*InvoiceResult, error) {
	total := data.Total.Round(2).StringFixed(2)
	body := feCAESolicitar{
		Auth: wsfeAuth{Token: auth.Token, Sign: auth.Sign, Cuit: auth.CUIT},
		FeCAEReq: feCAEReq{
			FeCabReq: feCabReq{CantReg: 1, PtoVta: data.PuntoVenta, CbteTipo: data.TipoCbte},
			FeDetReq: feDetReq{Detail: feCAEDetRequest{
				Concepto:   data.Concepto,
				DocTipo:    data.DocTipo,
				DocNro:     data.DocNro,
				CbteDesde:  data.CbteDesde,
				CbteHasta:  data.CbteHasta,
				CbteFch:    data.FechaCbte,
				ImpTotal:   total,
				ImpTotConc: "0.00",
				ImpNeto:    total, // simplificado: neto == total
				ImpOpEx:    "0.00",
				ImpTrib:    "0.00",
				ImpIVA:     "0.00",
				MonID:      "PES",
				MonCotiz:   "1",
			}},
		},
	}
	rawBody, err := c.call(ctx, entorno, wsfeNS+"FECAESolicitar", body)
	if err != nil {
		return nil, err
	}
	return parseCAEResponse(rawBody), nil
}

// call serializa el envelope, hace el POST SOAP 1.1 y devuelve el cuerpo crudo.
func (c *WSFEClient) call(ctx context.Context, entorno, soapAction string, content interface{}) ([]byte, error) {
	url, err := c.endpoint(entorno)
	if err != nil {
		return nil, err
	}
	envelope := wsfeEnvelope{
		XmlnsS: soapEnvNS,
		XmlnsA: wsfeNS,
		Body:   wsfeBody{Content: content},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wsfe: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wsfe: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml;charset=UTF-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wsfe: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("wsfe: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("wsfe: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wsfe: HTTP %d: %s", resp.StatusCode, Excerpt(rawBody, excerptLen))
	}
	return rawBody, nil
}

func (c *WSFEClient) endpoint(entorno string) (string, error) {
	if c.BaseURL != "" {
		return c.BaseURL, nil
	}
	switch entorno {
	case EnvProduction:
		return wsfeURLProd, nil
	case EnvTesting:
		return wsfeURLHomo, nil
	default:
		return "", fmt.Errorf("wsfe: entorno desconocido %q (usar %q o %q)", entorno, EnvProduction, EnvTesting)
	}
}

// parseCAEResponse extrae CAE/CAEFchVto/Resultado. Sin CAE, arma el motivo del
// rechazo: el mensaje del bloque <Err> tiene prioridad sobre el de <Obs>.
func parseCAEResponse(rawBody []byte) *InvoiceResult {
	res := &InvoiceResult{RawResponse: string(rawBody)}
	res.CAE, _ = LeafText(rawBody, "CAE")
	res.CAEFchVto, _ = LeafText(rawBody, "CAEFchVto")
	res.Resultado, _ = LeafText(rawBody, "Resultado")

	if res.CAE != "" {
		return res
	}

	if msg, ok := LeafTextWithin(rawBody, "Err", "Msg"); ok && msg != "" {
		if code, okC := LeafTextWithin(rawBody, "Err", "Code"); okC && code != "" {
			res.ErrorMsg = fmt.Sprintf("[%s] %s", code, msg)
		} else {
			res.ErrorMsg = msg
		}
		return res
	}
	if msg, ok := LeafTextWithin(rawBody, "Obs", "Msg"); ok && msg != "" {
		res.ErrorMsg = msg
		return res
	}
	return res
}
