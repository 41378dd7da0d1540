package submission

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"

	relayFailedMessage = "Failed to log submission"
)

// Settled is the final state of one relay call: fulfilled with Value, or rejected with Err.
type Settled struct {
	Value interface{}
	Err   error
}

func (s Settled) Fulfilled() bool { return s.Err == nil }

// RelayOutcome is what a batch reports for one relay call.
type RelayOutcome struct {
	Status  string
	Data    interface{}
	Message string
	Error   string
}

func (o RelayOutcome) MarshalJSON() ([]byte, error) {
	if o.Status == StatusSuccess {
		return json.Marshal(struct {
			Status string      `json:"status"`
			Data   interface{} `json:"data"`
		}{o.Status, o.Data})
	}
	return json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}{o.Status, o.Message, o.Error})
}

// AggregateOutcomes maps every settled relay call to its outcome, keeping the order.
func AggregateOutcomes(settled []Settled) []RelayOutcome {
	outcomes := make([]RelayOutcome, len(settled))
	for i, s := range settled {
		if s.Fulfilled() {
			outcomes[i] = RelayOutcome{Status: StatusSuccess, Data: s.Value}
			continue
		}
		outcomes[i] = RelayOutcome{Status: StatusError, Message: relayFailedMessage, Error: s.Err.Error()}
	}
	return outcomes
}
