package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Facturacion-api/internal/infrastructure/afip"
)

func TestLeafText_IgnoraPrefijos(t *testing.T) {
	raw := []byte(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
		<soapenv:Body><ns2:respuesta xmlns:ns2="urn:x"><ns2:token>  abc123  </ns2:token></ns2:respuesta></soapenv:Body>
	</soapenv:Envelope>`)

	got, ok := afip.LeafText(raw, "token")
	assert.True(t, ok)
	assert.Equal(t, "abc123", got)
}

func TestLeafText_FallbackRegexEnXMLMalformado(t *testing.T) {
	// Fragmento truncado: no parsea como documento, pero el patrón lo rescata.
	raw := []byte(`<respuesta><sign>XYZ==</sign><token>abc`)

	got, ok := afip.LeafText(raw, "sign")
	assert.True(t, ok)
	assert.Equal(t, "XYZ==", got)

	_, ok = afip.LeafText(raw, "inexistente")
	assert.False(t, ok)
}

func TestLeafText_DecodificaISO88591(t *testing.T) {
	// WSAA declara ISO-8859-1; acá el Msg trae "numeración" con la ó como
	// byte Latin-1 (0xF3), no UTF-8.
	raw := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><r><Msg>numeraci`), 0xF3)
	raw = append(raw, []byte(`n</Msg></r>`)...)

	got, ok := afip.LeafText(raw, "Msg")
	assert.True(t, ok)
	assert.Equal(t, "numeración", got)
}

func TestLeafTextWithin_SoloDentroDelPadre(t *testing.T) {
	raw := []byte(`<r><Obs><Msg>observacion</Msg></Obs><Err><Msg>error posta</Msg><Code>10015</Code></Err></r>`)

	got, ok := afip.LeafTextWithin(raw, "Err", "Msg")
	assert.True(t, ok)
	assert.Equal(t, "error posta", got)

	got, ok = afip.LeafTextWithin(raw, "Obs", "Msg")
	assert.True(t, ok)
	assert.Equal(t, "observacion", got)

	_, ok = afip.LeafTextWithin(raw, "Fault", "Msg")
	assert.False(t, ok)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "abc", afip.Excerpt([]byte("  abc  "), 500))
	assert.Equal(t, "ab", afip.Excerpt([]byte("abcdef"), 2))
}
