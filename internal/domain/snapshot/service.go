package snapshot

import (
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/morroware/retrosv2-sub000/internal/domain/state"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/kv"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
	"github.com/morroware/retrosv2-sub000/internal/shared/utils"
)

// Options configures a Service.
type Options struct {
	ExportedFrom string
	Emitter      state.Emitter
	Logger       *zap.Logger
	Metrics      *monitoring.Metrics
	Now          func() time.Time
	// Documents bounds raw JSON imports. Defaults to the snapshot limits.
	Documents *utils.DocumentValidator
}

// Service builds and restores snapshots of one store.
type Service struct {
	mu           sync.Mutex // serializes imports
	store        *state.Store
	kv           *kv.Guarded
	exportedFrom string
	emitter      state.Emitter
	logger       *zap.Logger
	metrics      *monitoring.Metrics
	now          func() time.Time
	labels       *bluemonday.Policy
	documents    *utils.DocumentValidator
}

// NewService creates a snapshot service over store and its durable backing.
func NewService(store *state.Store, durable *kv.Guarded, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	from := opts.ExportedFrom
	if from == "" {
		from = "RetrOS"
	}
	documents := opts.Documents
	if documents == nil {
		documents = utils.DefaultDocumentValidator()
	}
	return &Service{
		store:        store,
		kv:           durable,
		exportedFrom: from,
		emitter:      opts.Emitter,
		logger:       logger,
		metrics:      opts.Metrics,
		now:          now,
		labels:       bluemonday.StrictPolicy(),
		documents:    documents,
	}
}
