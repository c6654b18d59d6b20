package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	infraafip "github.com/jhoicas/Facturacion-api/internal/infrastructure/afip"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// AuthUseCase obtiene un ticket de acceso WSAA para un entorno, con cache en DB.
//
// Dos caminos:
//  1. Cache hit: el token vigente más reciente del entorno se devuelve sin
//     tocar la red. Es el camino estable (los tickets duran ~12 h).
//  2. Cache miss: credencial activa → TRA → firma CMS → loginCms → persistir.
//
// Acá no se reintenta nada: emitir un ticket tiene efectos reales en AFIP.
type AuthUseCase struct {
	credRepo  repository.CredencialRepository
	tokenRepo repository.TokenRepository
	wsaa      WSAAPort
	signer    TRASigner
	log       *logger.Logger
}

// NewAuthUseCase construye el caso de uso.
func NewAuthUseCase(
	credRepo repository.CredencialRepository,
	tokenRepo repository.TokenRepository,
	wsaa WSAAPort,
	signer TRASigner,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		credRepo:  credRepo,
		tokenRepo: tokenRepo,
		wsaa:      wsaa,
		signer:    signer,
		log:       log,
	}
}

// GetAuth devuelve un token utilizable para el entorno, junto con la
// credencial activa que lo respalda.
func (uc *AuthUseCase) GetAuth(ctx context.Context, entorno string) (*entity.TokenAFIP, *entity.Credencial, error) {
	cred, err := uc.credRepo.GetActiva(ctx, entorno)
	if err != nil {
		return nil, nil, fmt.Errorf("wsaa: consultar credenciales: %w", err)
	}
	if cred == nil {
		return nil, nil, fmt.Errorf("%w (entorno %s)", domain.ErrCredencialesFaltantes, entorno)
	}

	cached, err := uc.tokenRepo.GetVigente(ctx, entorno)
	if err != nil {
		return nil, nil, fmt.Errorf("wsaa: consultar cache de tokens: %w", err)
	}
	if cached != nil {
		uc.log.Debug().Str("entorno", entorno).Time("expiracion", cached.Expiracion).
			Msg("token WSAA vigente en cache, sin login")
		return cached, cred, nil
	}

	token, err := uc.login(ctx, cred, entorno)
	if err != nil {
		return nil, nil, err
	}
	return token, cred, nil
}

// login construye, firma y envía el TRA, y persiste el token resultante.
func (uc *AuthUseCase) login(ctx context.Context, cred *entity.Credencial, entorno string) (*entity.TokenAFIP, error) {
	tra, err := infraafip.BuildLoginTicketRequest(infraafip.ServiceWSFE, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("wsaa: construir TRA: %w", err)
	}

	cms, err := uc.signer.SignTRA(tra, cred.ClavePrivadaPEM, cred.CertificadoPEM)
	if err != nil {
		// Material almacenado inválido: fatal, no reintentable.
		return nil, fmt.Errorf("%w: %v", domain.ErrFirma, err)
	}

	res, err := uc.wsaa.LoginCms(ctx, cms, entorno)
	if err != nil {
		return nil, fmt.Errorf("wsaa: login: %w", err)
	}

	token := &entity.TokenAFIP{
		ID:         uuid.New().String(),
		Entorno:    entorno,
		Token:      res.Token,
		Sign:       res.Sign,
		Expiracion: res.Expiration,
		CreatedAt:  time.Now(),
	}
	if err := uc.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("wsaa: persistir token: %w", err)
	}

	uc.log.Info().Str("entorno", entorno).Time("expiracion", token.Expiracion).
		Msg("nuevo token WSAA emitido y cacheado")
	return token, nil
}
