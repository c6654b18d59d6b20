// seed_afip genera el script SQL para dar de alta una credencial AFIP en
// afip_credenciales a partir del certificado emitido por AFIP.
//
// Acepta el material en dos formatos:
//   - PKCS#12 (-p12 certificado.p12 -password ...), el formato que entrega
//     el portal de AFIP al crear el certificado.
//   - Par PEM por separado (-key clave.pem -cert certificado.pem).
//
// Uso:
//
//	go run ./cmd/seed_afip -p12 cert.p12 -password secreto -cuit 20-12345678-6 \
//	    -pto-vta 3 -condicion monotributo -entorno production
//
// Escribe: seed_afip_credenciales.sql en el directorio actual (o -o).
package main

import (
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/pkcs12"

	pkgafip "github.com/jhoicas/Facturacion-api/pkg/afip"
)

func main() {
	var (
		p12Path   = flag.String("p12", "", "ruta al PKCS#12 emitido por AFIP")
		password  = flag.String("password", "", "contraseña del PKCS#12")
		keyPath   = flag.String("key", "", "clave privada PEM (alternativa a -p12)")
		certPath  = flag.String("cert", "", "certificado PEM (alternativa a -p12)")
		cuit      = flag.String("cuit", "", "CUIT del emisor (con o sin guiones)")
		ptoVta    = flag.Int("pto-vta", 1, "punto de venta habilitado en AFIP")
		condicion = flag.String("condicion", pkgafip.CondicionMonotributo, "condición frente al IVA: monotributo | responsable_inscripto")
		entorno   = flag.String("entorno", "production", "entorno: production | testing")
		outPath   = flag.String("o", "seed_afip_credenciales.sql", "archivo SQL de salida")
	)
	flag.Parse()

	if err := pkgafip.ValidateCUIT(*cuit); err != nil {
		fatalf("CUIT inválido: %v", err)
	}
	if *entorno != "production" && *entorno != "testing" {
		fatalf("entorno debe ser production o testing, no %q", *entorno)
	}

	var keyPEM, certPEM string
	var err error
	switch {
	case *p12Path != "":
		keyPEM, certPEM, err = fromPKCS12(*p12Path, *password)
	case *keyPath != "" && *certPath != "":
		keyPEM, certPEM, err = fromPEMFiles(*keyPath, *certPath)
	default:
		fatalf("falta el material criptográfico: usar -p12 o el par -key/-cert")
	}
	if err != nil {
		fatalf("leer material criptográfico: %v", err)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		fatalf("crear archivo: %v", err)
	}
	defer out.Close()

	cuitLimpio := strings.NewReplacer("-", "", " ", "").Replace(*cuit)

	fmt.Fprintf(out, "-- Credencial AFIP %s (CUIT %s, pto vta %d)\n", *entorno, cuitLimpio, *ptoVta)
	fmt.Fprintf(out, "-- Generado por cmd/seed_afip\n\n")
	fmt.Fprintf(out, "UPDATE afip_credenciales SET activa = false WHERE entorno = '%s';\n\n", *entorno)
	fmt.Fprintf(out, "INSERT INTO afip_credenciales\n")
	fmt.Fprintf(out, "  (id, entorno, cuit, punto_venta, condicion_iva, clave_privada_pem, certificado_pem, activa)\n")
	fmt.Fprintf(out, "VALUES\n")
	fmt.Fprintf(out, "  ('%s', '%s', '%s', %d, '%s',\n   '%s',\n   '%s',\n   true);\n",
		uuid.New().String(), *entorno, cuitLimpio, *ptoVta, escapeSQL(*condicion),
		escapeSQL(keyPEM), escapeSQL(certPEM))

	fmt.Printf("Generado %s (entorno %s)\n", *outPath, *entorno)
}

// fromPKCS12 extrae clave y certificado del contenedor que entrega AFIP.
func fromPKCS12(path, password string) (keyPEM, certPEM string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	key, cert, err := pkcs12.Decode(raw, password)
	if err != nil {
		return "", "", fmt.Errorf("decodificar PKCS#12: %w", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", fmt.Errorf("serializar clave: %w", err)
	}
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}))
	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))
	return keyPEM, certPEM, nil
}

// fromPEMFiles lee el par ya separado, validando que sea PEM parseable.
func fromPEMFiles(keyPath, certPath string) (keyPEM, certPEM string, err error) {
	rawKey, err := os.ReadFile(keyPath)
	if err != nil {
		return "", "", err
	}
	if block, _ := pem.Decode(rawKey); block == nil {
		return "", "", fmt.Errorf("%s no contiene un bloque PEM", keyPath)
	}
	rawCert, err := os.ReadFile(certPath)
	if err != nil {
		return "", "", err
	}
	block, _ := pem.Decode(rawCert)
	if block == nil {
		return "", "", fmt.Errorf("%s no contiene un bloque PEM", certPath)
	}
	if _, err := x509.ParseCertificate(block.Bytes); err != nil {
		return "", "", fmt.Errorf("certificado inválido: %w", err)
	}
	return string(rawKey), string(rawCert), nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
