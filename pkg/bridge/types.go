// Package bridge contains the public contracts and value types shared by the
// push bridge and its collaborators.
package bridge

// DeviceToken is the opaque identifier the push provider issues for one app install.
type DeviceToken string

func (t DeviceToken) String() string { return string(t) }

// Empty reports whether the token carries no value.
func (t DeviceToken) Empty() bool { return t == "" }

// Application is the application context handed to the ingestor.
type Application struct {
	AppID    string
	Provider string
}

// PushMessage is the payload of a received push. It is either present (possibly
// with zero entries) or absent; an absent message reads as an empty mapping.
type PushMessage struct {
	data    map[string]string
	present bool
}

// NewPushMessage wraps data as a present message. A nil map is still present.
func NewPushMessage(data map[string]string) PushMessage {
	return PushMessage{data: data, present: true}
}

// AbsentMessage returns the absent variant.
func AbsentMessage() PushMessage {
	return PushMessage{}
}

// Present reports whether the provider delivered a payload at all.
func (m PushMessage) Present() bool { return m.present }

// Len returns the number of entries; zero for an absent message.
func (m PushMessage) Len() int { return len(m.data) }

// Get returns the value stored under key.
func (m PushMessage) Get(key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Data returns a copy of the payload. Absent messages yield an empty, non-nil map.
func (m PushMessage) Data() map[string]string {
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
