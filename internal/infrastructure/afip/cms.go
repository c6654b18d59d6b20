package afip

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/smallstep/pkcs7"
)

// NormalizePEM convierte secuencias "\n" literales (producto de almacenar el
// PEM en una columna de texto o variable de entorno) en saltos de línea reales.
func NormalizePEM(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), `\n`, "\n")
}

// SignTRA firma el TRA con PKCS#7/CMS SignedData (digest SHA-256, certificado
// del firmante adjunto, atributos autenticados estándar: content-type,
// message-digest y signing-time) y devuelve el DER en Base64, listo para el
// <in0> de loginCms.
//
// Un par clave/certificado inválido o que no se corresponde produce un error
// de firma; distinguirlo de un fallo de red es responsabilidad del caller.
func SignTRA(tra []byte, clavePrivadaPEM, certificadoPEM string) (string, error) {
	cert, err := parseCertificate(certificadoPEM)
	if err != nil {
		return "", err
	}
	key, err := parsePrivateKey(clavePrivadaPEM)
	if err != nil {
		return "", err
	}
	if err := checkKeyPair(cert, key); err != nil {
		return "", err
	}

	signed, err := pkcs7.NewSignedData(tra)
	if err != nil {
		return "", fmt.Errorf("cms: inicializar SignedData: %w", err)
	}
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)
	if err := signed.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return "", fmt.Errorf("cms: firmar TRA: %w", err)
	}
	der, err := signed.Finish()
	if err != nil {
		return "", fmt.Errorf("cms: serializar DER: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func parseCertificate(certPEM string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(NormalizePEM(certPEM)))
	if block == nil {
		return nil, fmt.Errorf("cms: certificado no es PEM válido")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cms: parsear certificado: %w", err)
	}
	return cert, nil
}

// parsePrivateKey acepta claves PKCS#8, PKCS#1 (RSA) y SEC1 (EC),
// en ese orden de preferencia.
func parsePrivateKey(keyPEM string) (crypto.Signer, error) {
	block, _ := pem.Decode([]byte(NormalizePEM(keyPEM)))
	if block == nil {
		return nil, fmt.Errorf("cms: clave privada no es PEM válido")
	}
	if k, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		signer, ok := k.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("cms: la clave PKCS#8 no es un firmante soportado")
		}
		return signer, nil
	}
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	if k, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	return nil, fmt.Errorf("cms: formato de clave privada no reconocido (se aceptan PKCS#8, PKCS#1 y EC)")
}

// checkKeyPair verifica que la clave privada corresponda a la clave pública del certificado.
func checkKeyPair(cert *x509.Certificate, key crypto.Signer) error {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		priv, ok := key.Public().(*rsa.PublicKey)
		if !ok || pub.N.Cmp(priv.N) != 0 {
			return fmt.Errorf("cms: la clave privada no corresponde al certificado")
		}
	case *ecdsa.PublicKey:
		priv, ok := key.Public().(*ecdsa.PublicKey)
		if !ok || !pub.Equal(priv) {
			return fmt.Errorf("cms: la clave privada no corresponde al certificado")
		}
	default:
		return fmt.Errorf("cms: algoritmo de clave pública no soportado en el certificado")
	}
	return nil
}
