package live

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// Live Messages
// ============================================================

const (
	TypeRoomState = "room_state"
	TypeSensor    = "sensor"
)

// Message: сообщение live-канала backend: {type, data}.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RoomState: частичное обновление атрибутов комнаты (например, свет включен).
// Поля, которых нет в сообщении, не трогаются.
type RoomState struct {
	RoomID string         `json:"roomId"`
	Fields map[string]any `json:"fields"`
}

type SensorReading struct {
	SensorID string  `json:"sensorId"`
	RoomID   string  `json:"roomId,omitempty"`
	Kind     string  `json:"kind"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
}

// Update: нормализованное обновление: ключ сущности и набор полей.
type Update struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// Decode переводит сообщение в Update. ok=false для неизвестных типов.
func Decode(msg Message) (Update, bool, error) {
	switch msg.Type {
	case TypeRoomState:
		var st RoomState
		if err := json.Unmarshal(msg.Data, &st); err != nil {
			return Update{}, false, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		if st.RoomID == "" {
			return Update{}, false, fmt.Errorf("decode %s: roomId required", msg.Type)
		}
		return Update{Key: RoomKey(st.RoomID), Fields: st.Fields}, true, nil

	case TypeSensor:
		var r SensorReading
		if err := json.Unmarshal(msg.Data, &r); err != nil {
			return Update{}, false, fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		if r.SensorID == "" {
			return Update{}, false, fmt.Errorf("decode %s: sensorId required", msg.Type)
		}
		fields := map[string]any{"kind": r.Kind, "value": r.Value}
		if r.Unit != "" {
			fields["unit"] = r.Unit
		}
		if r.RoomID != "" {
			fields["roomId"] = r.RoomID
		}
		return Update{Key: SensorKey(r.SensorID), Fields: fields}, true, nil
	}
	return Update{}, false, nil
}

func RoomKey(id string) string   { return "room:" + id }
func SensorKey(id string) string { return "sensor:" + id }
