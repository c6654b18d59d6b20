// Package pdf implementa la representación gráfica del comprobante electrónico
// AFIP (RG 4892/2020: datos del emisor, CAE con vencimiento y código QR).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de comprobante + N°  │  Fecha                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: CUIT + Punto de venta                              │
//	│  RECEPTOR: Consumidor Final                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER AFIP: CAE + Vencimiento + QR                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	pkgafip "github.com/jhoicas/Facturacion-api/pkg/afip"
)

var _ appbilling.ComprobantePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.ComprobantePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateComprobantePDF genera el PDF del comprobante y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateComprobantePDF(
	_ context.Context,
	comp *entity.Comprobante,
	pedido *entity.Pedido,
	cred *entity.Credencial,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante Electrónico AFIP", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(comp))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(cred))
	m.AddRows(receptorRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(pedidoRow(pedido))
	m.AddRows(totalRow(comp))
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range afipFooterRows(comp, cred) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tipo y número de comprobante (izq), fecha de emisión (der).
func headerRow(comp *entity.Comprobante) core.Row {
	numero := fmt.Sprintf("%04d-%08d", comp.PuntoVenta, comp.Numero)
	fecha := comp.CreatedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(pkgafip.CbteTypeName(comp.TipoCbte), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Comprobante N° "+numero, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORIGINAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos del emisor.
func emisorRow(cred *entity.Credencial) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("CUIT: %s   |   Punto de venta: %04d   |   Condición IVA: %s",
				cred.CUIT, cred.PuntoVenta, cred.CondicionIVA,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// receptorRow: el modelo de ticket factura siempre a consumidor final.
func receptorRow() core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Consumidor Final", props.Text{Size: 9, Top: 6}),
		),
	)
}

// pedidoRow: referencia al pedido de la plataforma.
func pedidoRow(pedido *entity.Pedido) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Pedido N° %d", pedido.Numero), props.Text{
				Size: 9, Top: 2,
			}),
		),
	)
}

// totalRow: importe total, sin desglose (neto == total, IVA 0).
func totalRow(comp *entity.Comprobante) core.Row {
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Top: 3, Right: 2,
			}),
		),
		col.New(3).Add(
			text.New("$ "+comp.Total.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Top: 3, Right: 1,
			}),
		),
	)
}

// afipFooterRows: CAE + vencimiento + código QR de verificación.
func afipFooterRows(comp *entity.Comprobante, cred *entity.Credencial) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INFORMACIÓN ELECTRÓNICA AFIP", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(8).Add(col.New(12).Add(
			text.New(fmt.Sprintf("CAE: %s      Vencimiento CAE: %s",
				comp.CAE, formatFechaAFIP(comp.CAEVencimiento)), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 2,
			}),
		)),
	}

	if qr, err := qrURL(comp, cred); err == nil {
		rows = append(rows, row.New(45).Add(
			col.New(4).Add(code.NewQr(qr, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Escaneá el código QR para validar\neste comprobante en el sitio de AFIP.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
			),
		))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Comprobante autorizado por AFIP. Conserve este documento como soporte fiscal.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// qrPayload es el JSON que AFIP espera dentro del QR (RG 4892/2020).
type qrPayload struct {
	Ver        int     `json:"ver"`
	Fecha      string  `json:"fecha"`
	CUIT       int64   `json:"cuit"`
	PtoVta     int     `json:"ptoVta"`
	TipoCmp    int     `json:"tipoCmp"`
	NroCmp     int64   `json:"nroCmp"`
	Importe    float64 `json:"importe"`
	Moneda     string  `json:"moneda"`
	Ctz        float64 `json:"ctz"`
	TipoDocRec int     `json:"tipoDocRec"`
	NroDocRec  int64   `json:"nroDocRec"`
	TipoCodAut string  `json:"tipoCodAut"`
	CodAut     string  `json:"codAut"`
}

// qrURL arma la URL de verificación pública de AFIP con el payload en base64.
func qrURL(comp *entity.Comprobante, cred *entity.Credencial) (string, error) {
	var cuit int64
	if _, err := fmt.Sscanf(cred.CUIT, "%d", &cuit); err != nil {
		return "", fmt.Errorf("cuit no numérico: %w", err)
	}
	importe, _ := comp.Total.Float64()
	payload := qrPayload{
		Ver:        1,
		Fecha:      comp.CreatedAt.Format("2006-01-02"),
		CUIT:       cuit,
		PtoVta:     comp.PuntoVenta,
		TipoCmp:    comp.TipoCbte,
		NroCmp:     comp.Numero,
		Importe:    importe,
		Moneda:     pkgafip.MonedaPeso,
		Ctz:        1,
		TipoDocRec: pkgafip.DocTipoConsumidorFinal,
		NroDocRec:  0,
		TipoCodAut: "E",
		CodAut:     comp.CAE,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return "https://www.afip.gob.ar/fe/qr/?p=" + base64.StdEncoding.EncodeToString(raw), nil
}

// formatFechaAFIP convierte "20250325" a "25/03/2025". Si no parsea, devuelve tal cual.
func formatFechaAFIP(s string) string {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
