package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventStaffRegistered = "clinical.staff.registered"

	EventClientDeactivated = "clinical.client.deactivated"
	EventClientReactivated = "clinical.client.reactivated"

	EventPatientDeactivated = "clinical.patient.deactivated"
	EventPatientReactivated = "clinical.patient.reactivated"

	EventDrugStockAdded   = "clinical.drug.stock_added"
	EventDrugAdministered = "clinical.drug.administered"

	EventCremationRecorded = "clinical.cremation.recorded"
)

// ExchangeClinicalEvents receives every audit-relevant domain event
const ExchangeClinicalEvents = "clinical.events"

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// StaffRegisteredEvent is published when a staff member registers
type StaffRegisteredEvent struct {
	StaffMemberID int    `json:"staff_member_id"`
	Username      string `json:"staff_username"`
	Role          string `json:"staff_role"`
	ClinicID      int    `json:"staff_clinic_id"`
}

// LifecycleEvent is published when a client or patient is deactivated
// or reactivated
type LifecycleEvent struct {
	EntityID int    `json:"entity_id"`
	Reason   string `json:"reason,omitempty"`
}

// DrugAdministeredEvent is published after a drug log entry is recorded
type DrugAdministeredEvent struct {
	BatchID       int     `json:"drug_batch_id"`
	PatientID     int     `json:"drug_patient_id"`
	StaffID       int     `json:"drug_staff_id"`
	QuantityGiven float64 `json:"drug_quantity_given"`
}

// DrugStockAddedEvent is published when a new batch enters stock
type DrugStockAddedEvent struct {
	BatchID  int `json:"drug_batch_id"`
	DrugID   int `json:"drug_id"`
	ClinicID int `json:"clinic_id"`
}

// CremationRecordedEvent is published when a cremation is created
type CremationRecordedEvent struct {
	CremationID int `json:"cremation_id"`
	PatientID   int `json:"cremation_patient_id"`
	ClinicID    int `json:"cremation_clinic_id"`
}
