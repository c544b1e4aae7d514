//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
	"github.com/canada7700/finish-line-calendar-app-sub000/test/util"
)

func TestEventPublisherMosquitto(t *testing.T) {
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	received := make(chan paho.Message, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("listener"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("finishline/#", 1, func(_ paho.Client, m paho.Message) { received <- m })
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	cli, err := NewPahoClient(Config{Enabled: true, Broker: broker, ClientID: "planner", QoS: 1})
	require.NoError(t, err)
	defer cli.Disconnect()

	pub := NewEventPublisher(cli, "finishline", nil, nil)
	id, err := pub.PublishEvent(ctx, events.PhaseScheduled{ProjectID: "p1", Phase: model.PhaseMillwork, ScheduledHours: 8})
	require.NoError(t, err)

	select {
	case m := <-received:
		assert.Equal(t, "finishline/phase/scheduled", m.Topic())
		var env Envelope
		require.NoError(t, json.Unmarshal(m.Payload(), &env))
		assert.Equal(t, id, env.MessageID)
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}
