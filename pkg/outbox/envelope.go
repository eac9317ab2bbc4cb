package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef records who triggered the event. Operator-driven events carry the
// provider scope; webhook-driven events leave it empty.
type ActorRef struct {
	UserID     uuid.UUID  `json:"userId"`
	ProviderID *uuid.UUID `json:"providerId,omitempty"`
	Role       string     `json:"role,omitempty"`
}

// PayloadEnvelope is the wire shape stored in outbox_events.payload and
// published verbatim. Consumers key off Version before decoding Data, so
// the envelope fields themselves must never change meaning.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
