// Package production orquesta el pipeline alcohol → base → lote → botellas.
// Cada operación es una única transacción: o se aplica completa o no se aplica.
package production

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
	"github.com/jhoicas/Licoreria-api/internal/observability"
	"github.com/jhoicas/Licoreria-api/pkg/logger"
)

// DefaultReadyIn tiempo de infusión estimado desde la última producción.
const DefaultReadyIn = 10 * 24 * time.Hour

// Config opciones del servicio.
type Config struct {
	ReadyIn time.Duration
}

// Service casos de uso del pipeline de producción y del ciclo de vida del lote.
type Service struct {
	txRunner     ledger.TxRunner
	lotRepo      repository.LotRepository
	movementRepo repository.MovementRepository
	ledger       *ledger.Ledger
	locker       LotLocker
	log          *logger.Logger
	metrics      *observability.Metrics
	readyIn      time.Duration
	now          func() time.Time
}

// NewService construye el servicio. metrics puede ser nil.
func NewService(
	txRunner ledger.TxRunner,
	lotRepo repository.LotRepository,
	movementRepo repository.MovementRepository,
	stockLedger *ledger.Ledger,
	locker LotLocker,
	log *logger.Logger,
	metrics *observability.Metrics,
	cfg Config,
) *Service {
	readyIn := cfg.ReadyIn
	if readyIn <= 0 {
		readyIn = DefaultReadyIn
	}
	return &Service{
		txRunner:     txRunner,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		ledger:       stockLedger,
		locker:       locker,
		log:          log.Child("production"),
		metrics:      metrics,
		readyIn:      readyIn,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// withLot ejecuta fn con el lote bloqueado.
func (s *Service) withLot(ctx context.Context, lotID string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, lotID)
	if err != nil {
		s.log.WithLot("lock", lotID).Warn().Err(err).Msg("lote no disponible")
		return fmt.Errorf("bloquear lote %s: %w", lotID, err)
	}
	defer unlock()
	return fn()
}

// finish registra métricas y log de cierre de una operación.
func (s *Service) finish(op string, txID string, err error) {
	s.metrics.Operation(op, err)
	if err != nil {
		s.log.Info().Err(err).Str("op", op).Str("tx_id", txID).Msg("operación rechazada")
		return
	}
	s.log.Debug().Str("op", op).Str("tx_id", txID).Msg("operación aplicada")
}
