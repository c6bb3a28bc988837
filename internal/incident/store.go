package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// Store persists incidents and returns the assigned id.
type Store interface {
	Create(ctx context.Context, incident *models.Incident) (string, error)
	Name() string
}

// Recorder creates incidents in a Store without ever failing. A store error
// is logged and replaced by a placeholder id.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:  store,
		logger: logger.Named("incident"),
	}
}

func (r *Recorder) CreateIncident(ctx context.Context, incident *models.Incident) string {
	id, err := r.store.Create(ctx, incident)
	if err != nil {
		r.logger.Error("Error logging compliance incident",
			zap.String("store", r.store.Name()),
			zap.Strings("types", incident.Types),
			zap.Error(err))
		return fmt.Sprintf("mock-error-id-%d", time.Now().UnixMilli())
	}

	r.logger.Info("Compliance incident created",
		zap.String("store", r.store.Name()),
		zap.String("id", id))
	return id
}

func newID() string {
	return uuid.NewString()
}
