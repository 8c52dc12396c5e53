package realtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bellfeed/pkg/realtime"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   string
		data    string
		want    realtime.Event
		wantErr error
	}{
		{name: "wakeup", event: "wakeup", want: realtime.Wakeup{}},
		{name: "new with id", event: "notifications.new", data: `{"id":"n1"}`, want: realtime.NotificationCreated{NotificationID: "n1"}},
		{name: "new without payload", event: "notifications.new", data: "null", want: realtime.NotificationCreated{}},
		{name: "all seen", event: "notifications.seen.all", want: realtime.AllSeen{}},
		{name: "all read", event: "notifications.read.all", want: realtime.AllRead{}},
		{name: "read", event: "notifications.read", data: `{"id":"n2"}`, want: realtime.NotificationRead{NotificationID: "n2"}},
		{name: "unread", event: "notifications.unread", data: `{"id":"n3"}`, want: realtime.NotificationUnread{NotificationID: "n3"}},
		{name: "delete", event: "notifications.delete", data: `{"id":"n4"}`, want: realtime.NotificationDeleted{NotificationID: "n4"}},
		{name: "delete without id", event: "notifications.delete", data: `{}`, wantErr: realtime.ErrInvalidPayload},
		{name: "malformed payload", event: "notifications.delete", data: `{"id":`, wantErr: realtime.ErrInvalidPayload},
		{name: "unknown", event: "notifications.archived", wantErr: realtime.ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := realtime.Parse(tt.event, []byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.event, got.Name())
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("envelope", func(t *testing.T) {
		t.Parallel()
		ev, err := realtime.Decode([]byte(`{"event":"notifications.delete","data":{"id":"abc"}}`))
		require.NoError(t, err)
		assert.Equal(t, realtime.NotificationDeleted{NotificationID: "abc"}, ev)
	})

	t.Run("not json", func(t *testing.T) {
		t.Parallel()
		_, err := realtime.Decode([]byte("wakeup"))
		require.ErrorIs(t, err, realtime.ErrInvalidPayload)
	})

	t.Run("encode then decode", func(t *testing.T) {
		t.Parallel()
		for _, ev := range []realtime.Event{
			realtime.Wakeup{},
			realtime.AllRead{},
			realtime.NotificationRead{NotificationID: "r1"},
			realtime.NotificationDeleted{NotificationID: "d1"},
		} {
			raw, err := realtime.Encode(ev)
			require.NoError(t, err)
			got, err := realtime.Decode(raw)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		}
	})

	t.Run("encode omits empty data", func(t *testing.T) {
		t.Parallel()
		raw, err := realtime.Encode(realtime.AllSeen{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"notifications.seen.all"}`, string(raw))
	})

	t.Run("encode nil", func(t *testing.T) {
		t.Parallel()
		_, err := realtime.Encode(nil)
		require.ErrorIs(t, err, realtime.ErrUnknownEvent)
	})
}
