// Package patientdata assembles the per-patient context snapshot the
// engine consumes. Snapshots are cached for a short TTL and sealed with
// AES-GCM so PHI never sits in process memory as plaintext longer than a
// single request.
package patientdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/internal/repository"
	"github.com/vitalhub/portal-api/pkg/metrics"
	"github.com/vitalhub/portal-api/pkg/security"
)

const (
	maxSymptoms = 20
	maxReports  = 10
)

type Service struct {
	repo      repository.PatientDataRepository
	cache     *cache.Cache
	encryptor security.Encryptor
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewService wires the read path. encryptor and m may be nil; a nil
// encryptor stores snapshots unencrypted (tests, local development).
func NewService(repo repository.PatientDataRepository, ttl, cleanup time.Duration, encryptor security.Encryptor, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache.New(ttl, cleanup),
		encryptor: encryptor,
		metrics:   m,
		logger:    logger,
	}
}

// GetContext returns the patient's current context snapshot, from cache
// when fresh. A partial snapshot is fine: missing profile or metrics stay
// nil and downstream consumers treat that as neutral.
func (s *Service) GetContext(ctx context.Context, patientID uuid.UUID) (model.PatientContext, error) {
	key := patientID.String()

	if raw, ok := s.cache.Get(key); ok {
		snapshot, err := s.unseal(raw)
		if err == nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return snapshot, nil
		}
		s.logger.Warn().Err(err).Str("patient_id", key).Msg("discarding undecodable cached snapshot")
		s.cache.Delete(key)
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	snapshot, err := s.load(ctx, patientID)
	if err != nil {
		return model.PatientContext{}, err
	}

	sealed, err := s.seal(snapshot)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", key).Msg("failed to seal snapshot, skipping cache")
		return snapshot, nil
	}
	s.cache.SetDefault(key, sealed)
	return snapshot, nil
}

// Invalidate drops the cached snapshot, forcing a reload on next access.
func (s *Service) Invalidate(patientID uuid.UUID) {
	s.cache.Delete(patientID.String())
}

func (s *Service) load(ctx context.Context, patientID uuid.UUID) (model.PatientContext, error) {
	profile, err := s.repo.GetProfile(ctx, patientID)
	if err != nil {
		return model.PatientContext{}, fmt.Errorf("failed to load profile: %w", err)
	}
	metrics, err := s.repo.GetMetrics(ctx, patientID)
	if err != nil {
		return model.PatientContext{}, fmt.Errorf("failed to load metrics: %w", err)
	}
	symptoms, err := s.repo.ListSymptoms(ctx, patientID, maxSymptoms)
	if err != nil {
		return model.PatientContext{}, fmt.Errorf("failed to load symptoms: %w", err)
	}
	reports, err := s.repo.ListReports(ctx, patientID, maxReports)
	if err != nil {
		return model.PatientContext{}, fmt.Errorf("failed to load reports: %w", err)
	}

	return model.PatientContext{
		Profile:  profile,
		Metrics:  metrics,
		Symptoms: symptoms,
		Reports:  reports,
	}, nil
}

func (s *Service) seal(snapshot model.PatientContext) ([]byte, error) {
	plain, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if s.encryptor == nil {
		return plain, nil
	}
	sealed, err := s.encryptor.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt snapshot: %w", err)
	}
	return sealed, nil
}

func (s *Service) unseal(raw any) (model.PatientContext, error) {
	data, ok := raw.([]byte)
	if !ok {
		return model.PatientContext{}, fmt.Errorf("unexpected cache entry type %T", raw)
	}
	if s.encryptor != nil {
		plain, err := s.encryptor.Decrypt(data)
		if err != nil {
			return model.PatientContext{}, fmt.Errorf("failed to decrypt snapshot: %w", err)
		}
		data = plain
	}
	var snapshot model.PatientContext
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.PatientContext{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
