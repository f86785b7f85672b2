package watermillnotifier

import (
	"encoding/json"
	"fmt"

	"github.com/crowdescrow/escrowd/internal/core/domain"
)

type envelope struct {
	Type domain.EventType
	Data json.RawMessage
}

func encodeEvents(events []domain.SubjectEvent) ([]byte, error) {
	envelopes := make([]envelope, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, envelope{event.GetType(), data})
	}
	return json.Marshal(envelopes)
}

func decodeEvents(buf []byte) ([]domain.SubjectEvent, error) {
	var envelopes []envelope
	if err := json.Unmarshal(buf, &envelopes); err != nil {
		return nil, err
	}

	events := make([]domain.SubjectEvent, 0, len(envelopes))
	for _, e := range envelopes {
		event, err := decodeEvent(e)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func decodeEvent(e envelope) (domain.SubjectEvent, error) {
	switch e.Type {
	case domain.EventTypeRequestSubmitted:
		return decode[domain.RequestSubmitted](e.Data)
	case domain.EventTypeStatusChanged:
		return decode[domain.StatusChanged](e.Data)
	case domain.EventTypeChallengeDepositPosted:
		return decode[domain.ChallengeDepositPosted](e.Data)
	case domain.EventTypeContributionAccepted:
		return decode[domain.ContributionAccepted](e.Data)
	case domain.EventTypeDisputeRaised:
		return decode[domain.DisputeRaised](e.Data)
	case domain.EventTypeAppealRaised:
		return decode[domain.AppealRaised](e.Data)
	case domain.EventTypeRequestResolved:
		return decode[domain.RequestResolved](e.Data)
	case domain.EventTypeRewardWithdrawn:
		return decode[domain.RewardWithdrawn](e.Data)
	default:
		return nil, fmt.Errorf("unknown event type %s", e.Type)
	}
}

func decode[T domain.SubjectEvent](data []byte) (domain.SubjectEvent, error) {
	var event T
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return event, nil
}
