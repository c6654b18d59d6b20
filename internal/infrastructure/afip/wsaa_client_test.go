package afip_test

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/infrastructure/afip"
)

// loginTicketResponse tal como lo devuelve el WSAA: ticket XML escapado dentro
// de <loginCmsReturn>.
func wsaaOKResponse(token, sign, expiration string) string {
	inner := fmt.Sprintf(
		`<loginTicketResponse version="1.0"><header><source>CN=wsaa</source></header><credentials><token>%s</token><sign>%s</sign></credentials><expirationTime>%s</expirationTime></loginTicketResponse>`,
		token, sign, expiration)
	var b strings.Builder
	b.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body><loginCmsResponse><loginCmsReturn>`)
	_ = xml.EscapeText(&b, []byte(inner))
	b.WriteString(`</loginCmsReturn></loginCmsResponse></soapenv:Body></soapenv:Envelope>`)
	return b.String()
}

func newWSAATestClient(handler http.HandlerFunc) (*afip.WSAAClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := afip.NewWSAAClient(5 * time.Second)
	c.BaseURL = srv.URL
	return c, srv
}

func TestLoginCms_Exitoso(t *testing.T) {
	var gotBody string
	c, srv := newWSAATestClient(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "text/xml;charset=UTF-8")
		fmt.Fprint(w, wsaaOKResponse("TOK", "SIGN", "2025-03-15T22:30:45.123-03:00"))
	})
	defer srv.Close()

	res, err := c.LoginCms(context.Background(), "Q01TLWZpcm1hZG8=", afip.EnvTesting)
	require.NoError(t, err)
	assert.Equal(t, "TOK", res.Token)
	assert.Equal(t, "SIGN", res.Sign)
	assert.Equal(t, 2025, res.Expiration.Year())

	// El CMS viaja en <in0> del loginCms
	assert.Contains(t, gotBody, "loginCms")
	assert.Contains(t, gotBody, "Q01TLWZpcm1hZG8=")
}

func TestLoginCms_FaultSOAP(t *testing.T) {
	c, srv := newWSAATestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body><soapenv:Fault><faultcode>cms.bad</faultcode><faultstring>Firma inválida o CMS expirado</faultstring></soapenv:Fault></soapenv:Body></soapenv:Envelope>`)
	})
	defer srv.Close()

	_, err := c.LoginCms(context.Background(), "xxx", afip.EnvTesting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Firma inválida o CMS expirado")
	assert.Contains(t, err.Error(), "cms.bad")
}

func TestLoginCms_RespuestaIrreconocible(t *testing.T) {
	c, srv := newWSAATestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>mantenimiento programado</body></html>")
	})
	defer srv.Close()

	_, err := c.LoginCms(context.Background(), "xxx", afip.EnvTesting)
	require.Error(t, err)
	// Nunca un error vacío: al menos un extracto del cuerpo
	assert.Contains(t, err.Error(), "mantenimiento programado")
}

func TestLoginCms_CuerpoVacio(t *testing.T) {
	c, srv := newWSAATestClient(func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()

	_, err := c.LoginCms(context.Background(), "xxx", afip.EnvTesting)
	require.Error(t, err)
	assert.NotEqual(t, "wsaa: ", err.Error(), "el mensaje no puede quedar vacío")
	assert.Contains(t, err.Error(), "cuerpo vacío")
}

func TestLoginCms_EntornoDesconocido(t *testing.T) {
	c := afip.NewWSAAClient(time.Second)
	_, err := c.LoginCms(context.Background(), "xxx", "staging")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entorno desconocido")
}

func TestLoginCms_ErrorDeRed(t *testing.T) {
	c := afip.NewWSAAClient(time.Second)
	c.BaseURL = "http://127.0.0.1:1" // puerto cerrado
	_, err := c.LoginCms(context.Background(), "xxx", afip.EnvTesting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llamada HTTP fallida")
}
