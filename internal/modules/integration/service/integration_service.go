package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"biochar/internal/modules/integration/domain"
	"biochar/internal/modules/integration/dto"
	integrationout "biochar/internal/modules/integration/port/out"
)

type IntegrationService struct {
	store integrationout.ManifestStore
	host  integrationout.Host
}

func NewIntegrationService(store integrationout.ManifestStore, host integrationout.Host) *IntegrationService {
	return &IntegrationService{store: store, host: host}
}

func (s *IntegrationService) List(ctx context.Context) ([]dto.IntegrationInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IntegrationInfo, 0, len(manifests))
	for _, m := range manifests {
		events := make([]string, 0, len(m.Events))
		for _, e := range m.Events {
			events = append(events, string(e))
		}
		out = append(out, dto.IntegrationInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Events: events})
	}
	return out, nil
}

func (s *IntegrationService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			meta, err := s.host.Describe(ctx, m)
			switch {
			case err != nil:
				result.Error = err.Error()
			case meta.Name != m.Name:
				result.Error = fmt.Sprintf("integration reports name %q", meta.Name)
			default:
				result.HandshakeOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *IntegrationService) Deliver(ctx context.Context, input dto.EventInput) ([]dto.DeliveryResult, error) {
	event := domain.Event{
		Kind: domain.EventKind(input.Kind),
		At:   input.At,
		Batch: domain.BatchSnapshot{
			ID:             input.Batch.ID,
			CoordinatorID:  input.Batch.CoordinatorID,
			KilnID:         input.Batch.KilnID,
			BiomassTypeID:  input.Batch.BiomassTypeID,
			Status:         input.Batch.Status,
			StartTime:      input.Batch.StartTime,
			InputQuantity:  input.Batch.InputQuantity,
			EndTime:        input.Batch.EndTime,
			OutputQuantity: input.Batch.OutputQuantity,
			PhotoRef:       input.Batch.PhotoRef,
		},
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DeliveryResult, 0, len(manifests))
	for _, m := range manifests {
		if !m.Enabled || !m.Subscribes(event.Kind) {
			continue
		}
		result := dto.DeliveryResult{Integration: m.Name}
		receipt, err := s.deliverOne(ctx, m, event)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Accepted = receipt.Accepted
			result.Reference = receipt.Reference
			result.Message = receipt.Message
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *IntegrationService) deliverOne(ctx context.Context, m domain.Manifest, event domain.Event) (domain.Receipt, error) {
	if err := checksumMatches(m.Binary, m.SHA256); err != nil {
		return domain.Receipt{}, err
	}
	if s.host == nil {
		return domain.Receipt{}, fmt.Errorf("no integration host configured")
	}
	receipt, err := s.host.Deliver(ctx, m, event)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Receipt{}, fmt.Errorf("%w: %s", domain.ErrDeliveryTimeout, m.Name)
		}
		return domain.Receipt{}, err
	}
	return receipt, nil
}

func (s *IntegrationService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate integration name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read integration binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
