package consumer

import (
	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

// MessageParser turns a raw queue message body into a click
type MessageParser interface {
	Parse(body []byte) (*domain.ClickEvent, error)
}
