package consumer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

// JSONClickParser implements MessageParser for clicks published as JSON
type JSONClickParser struct{}

// NewJSONClickParser creates a new JSON click parser
func NewJSONClickParser() *JSONClickParser {
	return &JSONClickParser{}
}

// Parse decodes and validates a published click
func (p *JSONClickParser) Parse(body []byte) (*domain.ClickEvent, error) {
	var click domain.ClickEvent
	if err := json.Unmarshal(body, &click); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	switch {
	case click.EventID == "":
		return nil, errors.New("click has no event_id")
	case click.ButtonID == "":
		return nil, errors.New("click has no button_id")
	case click.Timestamp.IsZero():
		return nil, errors.New("click has no timestamp")
	}

	if click.ActorID == "" {
		click.ActorID = domain.AnonymousActorID
	}
	if click.CampaignID == "" {
		click.CampaignID = domain.NoCampaign
	}
	click.Timestamp = click.Timestamp.UTC()

	return &click, nil
}
