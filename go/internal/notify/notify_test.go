package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs []published
	err  error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func TestNATSNotifier_Subjects(t *testing.T) {
	conn := &fakeConn{}
	n := NewNATSNotifier(conn, "tierdraft.notify", Routes{"vip": "discord.vip-room"})
	n.clock = clockwork.NewFakeClockAt(time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, n.Send(ctx, "general", "Pikachu drafted"))
	require.NoError(t, n.Send(ctx, "vip", "your turn"))

	require.Len(t, conn.msgs, 2)
	assert.Equal(t, "tierdraft.notify.general", conn.msgs[0].subject)
	assert.Equal(t, "discord.vip-room", conn.msgs[1].subject)

	var msg Message
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &msg))
	assert.Equal(t, "general", msg.ChannelID)
	assert.Equal(t, "Pikachu drafted", msg.Text)
	assert.Equal(t, time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC), msg.SentAt)
}

func TestNATSNotifier_Errors(t *testing.T) {
	n := NewNATSNotifier(&fakeConn{err: errors.New("closed")}, "tierdraft.notify", nil)
	assert.Error(t, n.Send(context.Background(), "", "x"))
	assert.ErrorContains(t, n.Send(context.Background(), "general", "x"), "closed")
}

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &fakeConn{}
	bad := errors.New("closed")
	m := Multi{
		LogNotifier{},
		NewNATSNotifier(ok, "a", nil),
		NewNATSNotifier(&fakeConn{err: bad}, "b", nil),
	}
	err := m.Send(context.Background(), "general", "hello")
	assert.ErrorIs(t, err, bad)
	assert.Len(t, ok.msgs, 1)
}
