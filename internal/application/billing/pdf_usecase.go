package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// ComprobantePDFUseCase genera la representación gráfica de un comprobante ya
// autorizado (ticket con CAE, vencimiento y QR AFIP).
type ComprobantePDFUseCase struct {
	compRepo   repository.ComprobanteRepository
	pedidoRepo repository.PedidoRepository
	credRepo   repository.CredencialRepository
	generator  ComprobantePDFGenerator
}

// NewComprobantePDFUseCase construye el caso de uso.
func NewComprobantePDFUseCase(
	compRepo repository.ComprobanteRepository,
	pedidoRepo repository.PedidoRepository,
	credRepo repository.CredencialRepository,
	generator ComprobantePDFGenerator,
) *ComprobantePDFUseCase {
	return &ComprobantePDFUseCase{
		compRepo:   compRepo,
		pedidoRepo: pedidoRepo,
		credRepo:   credRepo,
		generator:  generator,
	}
}

// GenerarPDF devuelve los bytes del PDF y un nombre de archivo sugerido.
func (uc *ComprobantePDFUseCase) GenerarPDF(ctx context.Context, comprobanteID, entorno string) ([]byte, string, error) {
	comp, err := uc.compRepo.GetByID(ctx, comprobanteID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: consultar comprobante: %w", err)
	}
	if comp == nil {
		return nil, "", fmt.Errorf("%w: comprobante %s", domain.ErrNotFound, comprobanteID)
	}

	pedido, err := uc.pedidoRepo.GetByID(ctx, comp.PedidoID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: consultar pedido: %w", err)
	}

	cred, err := uc.credRepo.GetActiva(ctx, entorno)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: consultar credenciales: %w", err)
	}
	if cred == nil {
		return nil, "", domain.ErrCredencialesFaltantes
	}

	pdf, err := uc.generator.GenerateComprobantePDF(ctx, comp, pedido, cred)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}

	filename := fmt.Sprintf("comprobante_%04d_%08d.pdf", comp.PuntoVenta, comp.Numero)
	return pdf, filename, nil
}
