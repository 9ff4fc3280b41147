package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/store"
)

type fixture struct {
	db     *store.DB
	bus    *bus.Bus
	srv    *httptest.Server
	client *api.Client
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	app, err := New(db, Options{SelfID: "me", Bus: b})
	require.NoError(t, err)

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL)
	require.NoError(t, err)
	return &fixture{db: db, bus: b, srv: srv, client: client}
}

func (f *fixture) inbound(t *testing.T, waID, name, body string) {
	t.Helper()
	resp, err := http.Post(f.srv.URL+"/conversations/"+waID+"/inbound", "application/json",
		strings.NewReader(`{"name":"`+name+`","body":"`+body+`"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestEmptyBackend(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	convs, err := f.client.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, convs)

	msgs, err := f.client.ListMessages(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestInboundCreatesConversation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.inbound(t, "5511999", "Alice", "hi")

	convs, err := f.client.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "5511999", convs[0].WaID)
	assert.Equal(t, "Alice", convs[0].DisplayName())
	assert.Equal(t, "hi", convs[0].Preview())
	assert.False(t, convs[0].LastMessage.Timestamp.IsZero())

	msgs, err := f.client.ListMessages(ctx, "5511999")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "5511999", msgs[0].From)
	assert.Equal(t, chat.Delivered, msgs[0].Status)
}

func TestSendEchoesCanonicalMessage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	events, unsub := f.bus.Subscribe(bus.MessageStored, 4)
	defer unsub()

	created, err := f.client.SendMessage(ctx, "A", "hello")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ID)
	assert.False(t, chat.IsTemp(created.ID))
	assert.Equal(t, "me", created.From)
	assert.Equal(t, "A", created.WaID)
	assert.Equal(t, chat.Sent, created.Status)

	msgs, err := f.client.ListMessages(ctx, "A")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, created.ID, msgs[0].ID)

	evt := <-events
	assert.Equal(t, created.ID, evt.Payload.(api.Message).ID)
}

func TestSendRejectsEmptyBody(t *testing.T) {
	f := setup(t)

	_, err := f.client.SendMessage(context.Background(), "A", "")
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)

	resp, err := http.Post(f.srv.URL+"/conversations/A/messages", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteMessage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.client.SendMessage(ctx, "A", "bye")
	require.NoError(t, err)

	require.NoError(t, f.client.DeleteMessage(ctx, created.ID))
	msgs, err := f.client.ListMessages(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	err = f.client.DeleteMessage(ctx, created.ID)
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestConversationNameFallsBackToContact(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.inbound(t, "B", "Bob", "yo")

	created, err := f.client.SendMessage(ctx, "B", "hey bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", created.Name)

	convs, err := f.client.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "Bob", convs[0].DisplayName())
	assert.Equal(t, "hey bob", convs[0].Preview())
	assert.Equal(t, "me", convs[0].LastMessage.From)
}
