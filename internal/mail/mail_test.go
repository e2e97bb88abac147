package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

func TestStatusChangeEmail(t *testing.T) {
	msg, err := StatusChangeEmail(StatusChange{
		To:        "jdoe@x.com",
		Name:      "Juan <Doe>",
		Folio:     "TK0007",
		Service:   "Impresora",
		OldStatus: domain.TicketStatusPending,
		NewStatus: domain.TicketStatusInProgress,
	})
	require.NoError(t, err)

	assert.Equal(t, "jdoe@x.com", msg.To)
	assert.Equal(t, "Actualización del estado de tu ticket TK0007", msg.Subject)
	assert.Contains(t, msg.HTML, "TK0007")
	assert.Contains(t, msg.HTML, "Impresora")
	assert.Contains(t, msg.HTML, "Pendiente")
	assert.Contains(t, msg.HTML, "En Proceso")
	assert.Contains(t, msg.HTML, "Juan &lt;Doe&gt;")
}

func TestStatusChangeEmailFallsBackToAddress(t *testing.T) {
	msg, err := StatusChangeEmail(StatusChange{To: "ana@x.com", Folio: "TK0001", NewStatus: domain.TicketStatusResolved})
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "Hola ana@x.com")
	assert.NotContains(t, msg.HTML, "Estado Anterior")
}

func TestLogMailerRequiresRecipient(t *testing.T) {
	m := NewLogMailer(zap.NewNop())
	assert.ErrorIs(t, m.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipient)
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@b.c", Subject: "x"}))
}

func TestResendMailerPostsEmail(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer server.Close()

	client := resend.NewClient("re_test")
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	m := NewResendMailerWithClient(client, "Sistema de Tickets <tickets@example.com>")
	err = m.Send(context.Background(), Message{To: "jdoe@x.com", Subject: "Hola", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "Sistema de Tickets <tickets@example.com>", got["from"])
	assert.Equal(t, []any{"jdoe@x.com"}, got["to"])
	assert.Equal(t, "Hola", got["subject"])
}

func TestResendMailerSurfacesProviderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad from"}`))
	}))
	defer server.Close()

	client := resend.NewClient("re_test")
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	m := NewResendMailerWithClient(client, "bad")
	assert.Error(t, m.Send(context.Background(), Message{To: "jdoe@x.com", Subject: "Hola"}))
}
