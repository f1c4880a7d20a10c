// Package events publishes audit-relevant domain events to the clinical
// events exchange. Publishing is best-effort: a broker outage must never
// fail the request that triggered the event.
package events

import (
	"context"

	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/messaging"
)

// ClinicalEventPublisher publishes clinical domain events. A nil publisher
// is valid and drops every event, which is how the service runs without a
// broker (development, tests).
type ClinicalEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewClinicalEventPublisher creates a publisher bound to the clinical events exchange
func NewClinicalEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ClinicalEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeClinicalEvents, "vetdesk-backend", log)
	if err != nil {
		return nil, err
	}

	return &ClinicalEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

func (p *ClinicalEventPublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// PublishStaffRegistered records a new staff account
func (p *ClinicalEventPublisher) PublishStaffRegistered(ctx context.Context, staffID int, username, role string, clinicID int) {
	p.publish(ctx, messaging.EventStaffRegistered, messaging.StaffRegisteredEvent{
		StaffMemberID: staffID,
		Username:      username,
		Role:          role,
		ClinicID:      clinicID,
	})
}

// PublishClientDeactivated records a client deactivation with its reason
func (p *ClinicalEventPublisher) PublishClientDeactivated(ctx context.Context, clientID int, reason string) {
	p.publish(ctx, messaging.EventClientDeactivated, messaging.LifecycleEvent{EntityID: clientID, Reason: reason})
}

// PublishClientReactivated records a client reactivation
func (p *ClinicalEventPublisher) PublishClientReactivated(ctx context.Context, clientID int) {
	p.publish(ctx, messaging.EventClientReactivated, messaging.LifecycleEvent{EntityID: clientID})
}

// PublishPatientDeactivated records a patient deactivation with its reason
func (p *ClinicalEventPublisher) PublishPatientDeactivated(ctx context.Context, patientID int, reason string) {
	p.publish(ctx, messaging.EventPatientDeactivated, messaging.LifecycleEvent{EntityID: patientID, Reason: reason})
}

// PublishPatientReactivated records a patient reactivation
func (p *ClinicalEventPublisher) PublishPatientReactivated(ctx context.Context, patientID int) {
	p.publish(ctx, messaging.EventPatientReactivated, messaging.LifecycleEvent{EntityID: patientID})
}

// PublishDrugStockAdded records a new batch entering stock
func (p *ClinicalEventPublisher) PublishDrugStockAdded(ctx context.Context, batchID, drugID, clinicID int) {
	p.publish(ctx, messaging.EventDrugStockAdded, messaging.DrugStockAddedEvent{
		BatchID:  batchID,
		DrugID:   drugID,
		ClinicID: clinicID,
	})
}

// PublishDrugAdministered records a drug administration
func (p *ClinicalEventPublisher) PublishDrugAdministered(ctx context.Context, batchID, patientID, staffID int, quantity float64) {
	p.publish(ctx, messaging.EventDrugAdministered, messaging.DrugAdministeredEvent{
		BatchID:       batchID,
		PatientID:     patientID,
		StaffID:       staffID,
		QuantityGiven: quantity,
	})
}

// PublishCremationRecorded records a new cremation
func (p *ClinicalEventPublisher) PublishCremationRecorded(ctx context.Context, cremationID, patientID, clinicID int) {
	p.publish(ctx, messaging.EventCremationRecorded, messaging.CremationRecordedEvent{
		CremationID: cremationID,
		PatientID:   patientID,
		ClinicID:    clinicID,
	})
}
