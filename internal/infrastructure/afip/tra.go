// Package afip implementa la integración con los web services SOAP de AFIP:
// WSAA (autenticación vía Ticket de Requerimiento de Acceso firmado CMS) y
// WSFEv1 (autorización de comprobantes electrónicos / CAE).
package afip

import (
	"encoding/xml"
	"fmt"
	"time"
)

// ServiceWSFE es el servicio destino del TRA para facturación electrónica.
const ServiceWSFE = "wsfe"

// traTimeLayout fecha ISO-8601 al segundo, sin zona ni fracción,
// tal como lo exige el esquema del loginTicketRequest.
const traTimeLayout = "2006-01-02T15:04:05"

// traValidity vigencia solicitada para el ticket (el WSAA emite ~12 h).
const traValidity = 12 * time.Hour

type loginTicketRequest struct {
	XMLName xml.Name  `xml:"loginTicketRequest"`
	Version string    `xml:"version,attr"`
	Header  traHeader `xml:"header"`
	Service string    `xml:"service"`
}

type traHeader struct {
	UniqueID       int64  `xml:"uniqueId"`
	GenerationTime string `xml:"generationTime"`
	ExpirationTime string `xml:"expirationTime"`
}

// BuildLoginTicketRequest genera el XML del TRA para el servicio indicado.
// uniqueId se deriva de los segundos epoch de now; las fechas se serializan
// truncadas al segundo y sin offset.
func BuildLoginTicketRequest(service string, now time.Time) ([]byte, error) {
	gen := now.Truncate(time.Second)
	tra := loginTicketRequest{
		Version: "1.0",
		Header: traHeader{
			UniqueID:       gen.Unix(),
			GenerationTime: gen.Format(traTimeLayout),
			ExpirationTime: gen.Add(traValidity).Format(traTimeLayout),
		},
		Service: service,
	}
	body, err := xml.MarshalIndent(tra, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tra: serializar loginTicketRequest: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
