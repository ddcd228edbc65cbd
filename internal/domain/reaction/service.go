// Package reaction provides the domain service layer for reaction operations.
package reaction

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Core/pkg/errors"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// Service coordinates reaction business logic: construction and validation,
// surface-attribute inference, balance checking, atom mapping, family
// classification, persistence, and event publication.
//
// Only the repository and logger are required; every other collaborator is an
// optional capability wired through a ServiceOption and skipped when absent.
type Service struct {
	repo       Repository
	logger     logging.Logger
	aligner    AlignmentService
	classifier FamilyClassifier
	cache      AtomMapCache
	publisher  EventPublisher
	geometries GeometryStore
	metrics    Metrics

	// sf deduplicates concurrent atom-map computations per reaction ID.
	sf singleflight.Group
}

// ServiceOption wires an optional collaborator into the Service.
type ServiceOption func(*Service)

// WithAligner injects the external 3-D alignment service used for atom maps.
func WithAligner(a AlignmentService) ServiceOption {
	return func(s *Service) { s.aligner = a }
}

// WithClassifier injects the external reaction-family classifier.
func WithClassifier(c FamilyClassifier) ServiceOption {
	return func(s *Service) { s.classifier = c }
}

// WithAtomMapCache injects a cache for computed atom maps.
func WithAtomMapCache(c AtomMapCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithPublisher injects the domain-event publisher.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithGeometryStore injects the blob store for TS guess geometries.
func WithGeometryStore(g GeometryStore) ServiceOption {
	return func(s *Service) { s.geometries = g }
}

// WithMetrics injects the metrics sink.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a reaction domain service.
func NewService(repo Repository, logger logging.Logger, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

// CreateReaction builds a reaction from the request, infers its surface
// attributes where possible, enforces atom balance, assigns its index,
// persists it, and publishes its events.
func (s *Service) CreateReaction(ctx context.Context, req rxntypes.CreateReactionRequest) (*Reaction, error) {
	rSpecies, err := speciesFromRecords(req.RSpecies)
	if err != nil {
		return nil, err
	}
	pSpecies, err := speciesFromRecords(req.PSpecies)
	if err != nil {
		return nil, err
	}

	in := NewReactionInput{
		Label:        req.Label,
		Reactants:    req.Reactants,
		Products:     req.Products,
		RSpecies:     rSpecies,
		PSpecies:     pSpecies,
		Multiplicity: req.Multiplicity,
		TSMethods:    req.TSMethods,
		TSXYZGuesses: req.TSXYZGuess,
	}
	if req.Charge != nil {
		in.Charge = *req.Charge
	}
	rxn, err := NewReaction(in)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByLabel(ctx, rxn.Label()); err == nil {
		s.logger.Info("reaction already exists",
			logging.String("label", existing.Label()),
			logging.String("id", string(existing.ID)))
		return nil, errors.New(errors.ErrCodeReactionAlreadyExists,
			"a reaction with this label already exists").
			WithDetail("label=" + existing.Label())
	} else if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to check for existing reaction")
	}

	if req.Charge == nil {
		rxn.DetermineCharge()
	}
	if rxn.Multiplicity == nil && len(rxn.RSpecies) > 0 {
		res, err := rxn.DetermineMultiplicity()
		if err != nil {
			// Inference is best-effort at creation; the combination may become
			// resolvable once more species attributes are known.
			s.logger.Warn("could not determine reaction multiplicity",
				logging.String("label", rxn.Label()), logging.Err(err))
		} else {
			if s.metrics != nil {
				s.metrics.ObserveMultiplicityResolution(string(res.Status))
			}
			if res.Status == rxntypes.ResolutionAssumed {
				s.logger.Warn("assuming reaction surface multiplicity",
					logging.String("label", rxn.Label()),
					logging.Int("multiplicity", res.Value))
			}
		}
	}

	if _, _, err := s.checkBalance(rxn, nil, true); err != nil {
		return nil, err
	}

	index, err := s.repo.NextIndex(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to reserve reaction index")
	}
	rxn.SetIndex(index)

	if err := s.repo.Save(ctx, rxn); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to save reaction")
	}
	s.archiveTSGuesses(ctx, rxn)
	s.publishEvents(ctx, rxn)
	if s.metrics != nil {
		s.metrics.ObserveReactionCreated()
	}

	s.logger.Info("created reaction",
		logging.String("id", string(rxn.ID)),
		logging.String("label", rxn.Label()),
		logging.Int("index", index))
	return rxn, nil
}

// GetReaction retrieves a reaction by ID.
func (s *Service) GetReaction(ctx context.Context, id common.ID) (*Reaction, error) {
	rxn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to load reaction")
	}
	return rxn, nil
}

// ListReactions returns one page of reactions plus the total count.
func (s *Service) ListReactions(ctx context.Context, page common.Pagination) ([]*Reaction, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, errors.InvalidParam(err.Error())
	}
	return s.repo.List(ctx, page)
}

// DeleteReaction removes a reaction and invalidates its cached atom map.
func (s *Service) DeleteReaction(ctx context.Context, id common.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "failed to delete reaction")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.logger.Warn("failed to invalidate atom map cache",
				logging.String("id", string(id)), logging.Err(err))
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation and inference
// ─────────────────────────────────────────────────────────────────────────────

// ValidateLabel parses a reaction label and reports its reactant and product
// lists, or the grammar violation.
func (s *Service) ValidateLabel(label string) ([]string, []string, error) {
	return ParseLabel(label)
}

// ValidateAttributes runs the four-way attribute consistency check on a
// rehydrated record.
func (s *Service) ValidateAttributes(rec rxntypes.ReactionRecord) error {
	rxn, err := FromRecord(rec)
	if err != nil {
		return err
	}
	return rxn.CheckAttributes()
}

// ResolveMultiplicity resolves a surface multiplicity from raw reactant and
// product spin multiplicities.
func (s *Service) ResolveMultiplicity(req rxntypes.MultiplicityRequest) (rxntypes.MultiplicityResponse, error) {
	res, err := ResolveMultiplicity(req.ReactantMultiplicities, req.ProductMultiplicities)
	if err != nil {
		return rxntypes.MultiplicityResponse{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveMultiplicityResolution(string(res.Status))
	}
	if res.Status == rxntypes.ResolutionAssumed {
		s.logger.Warn("assuming surface multiplicity",
			logging.Any("reactant_multiplicities", req.ReactantMultiplicities),
			logging.Int("multiplicity", res.Value))
	}
	return rxntypes.MultiplicityResponse{
		Multiplicity: res.Value,
		Status:       res.Status,
	}, nil
}

// CheckBalance runs every atom-balance comparison for the stored reaction,
// optionally against an alternate TS geometry block.
func (s *Service) CheckBalance(ctx context.Context, id common.ID, altTSXYZ string, raiseOnFail bool) (rxntypes.BalanceResponse, error) {
	rxn, err := s.GetReaction(ctx, id)
	if err != nil {
		return rxntypes.BalanceResponse{}, err
	}
	return s.CheckRecordBalance(ctx, rxn, altTSXYZ, raiseOnFail)
}

// CheckRecordBalance is CheckBalance for a caller-owned reaction.
func (s *Service) CheckRecordBalance(ctx context.Context, rxn *Reaction, altTSXYZ string, raiseOnFail bool) (rxntypes.BalanceResponse, error) {
	var altTS *species.XYZ
	if altTSXYZ != "" {
		var err error
		altTS, err = species.ParseXYZ(altTSXYZ)
		if err != nil {
			return rxntypes.BalanceResponse{}, err
		}
	}
	rep, balanced, err := s.checkBalance(rxn, altTS, raiseOnFail)
	resp := rxntypes.BalanceResponse{Balanced: balanced, Checks: rep.Checks}
	// Drain events even when the imbalance is surfaced as an error, so a
	// recorded BalanceFailedEvent is never left for a later operation.
	s.publishEvents(ctx, rxn)
	return resp, err
}

// checkBalance wraps the aggregate's balance check with the diagnostics and
// metrics that belong to the service layer: one log line per failing check.
// The report is computed once and returned alongside the verdict.
func (s *Service) checkBalance(rxn *Reaction, altTS *species.XYZ, raiseOnFail bool) (BalanceReport, bool, error) {
	rep := rxn.AtomBalanceReport(altTS)
	for _, check := range rep.Checks {
		if check.Determinable && !check.Balanced {
			s.logger.Error("atom balance check failed",
				logging.String("label", rxn.Label()),
				logging.String("check", check.Name),
				logging.String("detail", check.Detail))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveBalanceCheck(rep.Balanced())
	}
	balanced, err := rxn.EvaluateBalanceReport(rep, raiseOnFail)
	return rep, balanced, err
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom mapping
// ─────────────────────────────────────────────────────────────────────────────

// GetAtomMap returns the reaction's atom map, consulting the cache, then the
// aggregate's own cached value, then the alignment service.  Concurrent
// requests for the same reaction share one computation.
func (s *Service) GetAtomMap(ctx context.Context, rxn *Reaction) ([]int, error) {
	if m := rxn.AtomMap(); m != nil {
		return m, nil
	}
	if s.cache != nil {
		if m, ok, err := s.cache.Get(ctx, rxn.ID); err != nil {
			s.logger.Warn("atom map cache read failed",
				logging.String("id", string(rxn.ID)), logging.Err(err))
		} else if ok {
			if err := rxn.SetAtomMap(m); err == nil {
				return m, nil
			}
			// A cached map that no longer fits the reaction is stale.
			_ = s.cache.Invalidate(ctx, rxn.ID)
		}
	}
	if s.aligner == nil {
		return nil, errors.New(errors.ErrCodeAlignmentUnavailable,
			"no alignment service is configured")
	}

	v, err, _ := s.sf.Do(string(rxn.ID), func() (interface{}, error) {
		start := time.Now()
		m, err := rxn.ComputeAtomMap(ctx, s.aligner)
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.ObserveAtomMapLatency(time.Since(start).Seconds())
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	m, _ := v.([]int)
	if m == nil {
		s.logger.Warn("atom map unavailable",
			logging.String("label", rxn.Label()))
		return nil, nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, rxn.ID, m); err != nil {
			s.logger.Warn("atom map cache write failed",
				logging.String("id", string(rxn.ID)), logging.Err(err))
		}
	}
	s.publishEvents(ctx, rxn)
	return m, nil
}

// ResolveAtomMap is GetAtomMap for a stored reaction: it loads the
// aggregate, computes or fetches the map, and persists the aggregate when
// the computation attached a new one.
func (s *Service) ResolveAtomMap(ctx context.Context, id common.ID) ([]int, error) {
	rxn, err := s.GetReaction(ctx, id)
	if err != nil {
		return nil, err
	}
	had := rxn.AtomMap() != nil
	m, err := s.GetAtomMap(ctx, rxn)
	if err != nil {
		return nil, err
	}
	if m != nil && !had {
		if err := s.repo.Save(ctx, rxn); err != nil {
			s.logger.Warn("failed to persist computed atom map",
				logging.String("id", string(id)), logging.Err(err))
		}
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Family classification
// ─────────────────────────────────────────────────────────────────────────────

// DetermineFamily classifies the reaction's mechanistic family through the
// injected classifier and stores the (family, own-reverse) pair.  It is a
// no-op when no classifier is configured or the reaction has no structural
// stub.
func (s *Service) DetermineFamily(ctx context.Context, rxn *Reaction) error {
	if s.classifier == nil {
		return nil
	}
	stub := rxn.Stub()
	if stub == nil {
		return nil
	}
	family, ownReverse, err := s.classifier.Classify(ctx, stub)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeFamilyUnresolved) {
			s.logger.Warn("reaction family could not be determined",
				logging.String("label", rxn.Label()))
			return nil
		}
		return errors.Wrap(err, errors.CodeUnknown,
			"family classification failed for reaction "+rxn.Label())
	}
	rxn.Family = family
	rxn.FamilyOwnReverse = ownReverse
	return nil
}

// ClassifyReaction determines and persists the family of a stored reaction.
func (s *Service) ClassifyReaction(ctx context.Context, id common.ID) (string, bool, error) {
	rxn, err := s.GetReaction(ctx, id)
	if err != nil {
		return "", false, err
	}
	if err := s.DetermineFamily(ctx, rxn); err != nil {
		return "", false, err
	}
	if rxn.Family != "" {
		if err := s.repo.Save(ctx, rxn); err != nil {
			s.logger.Warn("failed to persist reaction family",
				logging.String("id", string(id)), logging.Err(err))
		}
	}
	return rxn.Family, rxn.FamilyOwnReverse, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internals
// ─────────────────────────────────────────────────────────────────────────────

// archiveTSGuesses stores each TS guess blob; failures are non-fatal.
func (s *Service) archiveTSGuesses(ctx context.Context, rxn *Reaction) {
	if s.geometries == nil {
		return
	}
	for i, guess := range rxn.TSXYZGuesses {
		if err := s.geometries.PutTSGuess(ctx, rxn.ID, i, guess); err != nil {
			s.logger.Warn("failed to archive ts guess",
				logging.String("id", string(rxn.ID)),
				logging.Int("guess", i),
				logging.Err(err))
		}
	}
}

// publishEvents drains the aggregate's events into the publisher; publish
// failures are logged, never surfaced, so persistence stays authoritative.
func (s *Service) publishEvents(ctx context.Context, rxn *Reaction) {
	events := rxn.Events()
	if len(events) == 0 {
		return
	}
	rxn.ClearEvents()
	if s.publisher == nil {
		return
	}
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				logging.String("event", event.EventType()),
				logging.Err(err))
		}
	}
}
