package afip

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito verificador del CUIT (módulo 11, AFIP).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateCUIT valida que el CUIT (con o sin guiones) tenga 11 dígitos y un
// dígito verificador correcto según el algoritmo módulo 11 de AFIP.
// cuit puede ser "20-12345678-6" o "20123456786".
func ValidateCUIT(cuit string) error {
	digits := extractDigits(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected, err := computeCUITCheckDigit(digits[:10])
	if err != nil {
		return err
	}
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// ComputeCUITCheckDigit calcula el dígito verificador para los 10 primeros
// dígitos del CUIT. Útil para completar un CUIT antes de registrarlo.
func ComputeCUITCheckDigit(cuit string) (byte, error) {
	digits := extractDigits(cuit)
	if len(digits) < 10 {
		return 0, fmt.Errorf("afip: se requieren al menos 10 dígitos para calcular el verificador, se encontraron %d", len(digits))
	}
	return computeCUITCheckDigit(digits[:10])
}

func computeCUITCheckDigit(base []byte) (byte, error) {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * cuitWeights[i]
	}
	remainder := sum % 11
	switch remainder {
	case 0:
		return '0', nil
	case 1:
		// AFIP no asigna CUITs cuyo resto sea 1; cambia el prefijo (20→23, 27→23).
		return 0, fmt.Errorf("afip: CUIT con resto 1 no es asignable")
	default:
		return byte('0' + (11 - remainder)), nil
	}
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
