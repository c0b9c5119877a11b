package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

func TestPushMessage_Variants(t *testing.T) {
	t.Run("Absent reads as empty mapping", func(t *testing.T) {
		msg := bridge.AbsentMessage()

		assert.False(t, msg.Present())
		assert.Equal(t, 0, msg.Len())
		assert.NotNil(t, msg.Data())
		assert.Empty(t, msg.Data())
		_, ok := msg.Get("campaign_id")
		assert.False(t, ok)
	})

	t.Run("Present with nil map is still present", func(t *testing.T) {
		msg := bridge.NewPushMessage(nil)

		assert.True(t, msg.Present())
		assert.Empty(t, msg.Data())
	})

	t.Run("Data is a copy", func(t *testing.T) {
		src := map[string]string{"campaign_id": "42"}
		msg := bridge.NewPushMessage(src)

		out := msg.Data()
		out["campaign_id"] = "tampered"

		v, ok := msg.Get("campaign_id")
		assert.True(t, ok)
		assert.Equal(t, "42", v)
	})
}

func TestDeviceToken_Empty(t *testing.T) {
	assert.True(t, bridge.DeviceToken("").Empty())
	assert.False(t, bridge.DeviceToken("abc123").Empty())
	assert.Equal(t, "abc123", bridge.DeviceToken("abc123").String())
}
