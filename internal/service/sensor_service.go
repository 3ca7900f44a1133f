package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecowatch/emission-monitor/internal/repository"
)

// SensorService turns MQTT sensor messages into reading updates. Handling
// is synchronous per message; there is no buffering pipeline.
type SensorService struct {
	companies *CompanyService
}

type sensorMessage struct {
	Registration string  `json:"registration"`
	GasAmount    float64 `json:"gas_amount"`
}

// FromMQTT decodes a sensor payload, resolves the company by registration
// code and applies the reading.
func (s *SensorService) FromMQTT(_ string, payload []byte) error {
	var msg sensorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode sensor payload: %w", err)
	}
	ctx := context.Background()
	company, err := s.companies.repos.Companies.GetByRegistration(ctx, msg.Registration)
	if err != nil {
		if err == repository.ErrNotFound {
			return fmt.Errorf("unknown registration %q: %w", msg.Registration, err)
		}
		return err
	}
	_, err = s.companies.UpdateReading(ctx, company.ID, msg.GasAmount)
	return err
}
