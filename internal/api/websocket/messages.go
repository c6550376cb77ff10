package websocket

import (
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeCycleStarted  MessageType = "cycle_started"
	MessageTypeCycleState    MessageType = "cycle_state"
	MessageTypeCycleFinished MessageType = "cycle_finished"

	MessageTypeMachineStatus MessageType = "machine_status"
	MessageTypeSystemStatus  MessageType = "system_status"

	MessageTypeAuthSuccess MessageType = "auth_success"
	MessageTypeAuthFailed  MessageType = "auth_failed"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// CycleStateData is sent for every state change of a running cycle.
type CycleStateData struct {
	CycleID  string `json:"cycle_id"`
	State    string `json:"state"`
	Previous string `json:"previous_state,omitempty"`
}

// CycleFinishedData carries the final status of a cycle.
type CycleFinishedData struct {
	CycleID string              `json:"cycle_id"`
	Status  types.LaundryStatus `json:"status"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewCycleMessage converts a runner event into a client message.
func NewCycleMessage(event cycle.Event) Message {
	id := event.CycleID.String()

	var msg Message
	switch event.Type {
	case cycle.EventStarted:
		msg = NewMessage(MessageTypeCycleStarted, CycleStateData{CycleID: id, State: "started"})
	case cycle.EventFinished:
		data := CycleFinishedData{CycleID: id}
		if event.Status != nil {
			data.Status = *event.Status
		}
		msg = NewMessage(MessageTypeCycleFinished, data)
	default:
		msg = NewMessage(MessageTypeCycleState, CycleStateData{
			CycleID:  id,
			State:    string(event.To),
			Previous: string(event.From),
		})
	}

	if !event.Timestamp.IsZero() {
		msg.Timestamp = event.Timestamp
	}
	return msg
}
