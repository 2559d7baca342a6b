package contact

import (
	"context"

	"github.com/obrakomarvelouss/gpower/internal/gateway"
	"github.com/obrakomarvelouss/gpower/internal/metrics"
)

// Service inserts form submissions. Nothing is read back.
type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

func (s *Service) SubmitContact(ctx context.Context, m Message) error {
	if err := m.normalize(); err != nil {
		return err
	}
	_, err := s.gw.Insert(ctx, gateway.TableContactMessages, gateway.Row{
		"name":    m.Name,
		"email":   m.Email,
		"message": m.Message,
	})
	metrics.RecordFormSubmission("contact", err == nil)
	return err
}

func (s *Service) SubmitRequest(ctx context.Context, r Request) error {
	if err := r.normalize(); err != nil {
		return err
	}
	_, err := s.gw.Insert(ctx, gateway.TableCustomerRequests, gateway.Row{
		"name":    r.Name,
		"service": r.Service,
		"details": r.Details,
	})
	metrics.RecordFormSubmission("request", err == nil)
	return err
}
