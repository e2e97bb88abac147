package mail

import (
	"bytes"
	"html/template"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

var statusChangeTmpl = template.Must(template.New("status_change").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Hola {{.Name}},</h2>
  <p>Te informamos que el estado de tu ticket ha sido actualizado:</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Folio:</strong> {{.Folio}}</p>
    <p><strong>Servicio:</strong> {{.Service}}</p>
    {{- if .OldStatus}}
    <p><strong>Estado Anterior:</strong> {{.OldStatus}}</p>
    {{- end}}
    <p><strong>Nuevo Estado:</strong> {{.NewStatus}}</p>
  </div>
  <p>Si tienes alguna pregunta, no dudes en contactarnos.</p>
  <p style="color: #666; font-size: 14px;">Saludos,<br>Equipo de Soporte Técnico</p>
</div>
`))

// StatusChange is the data behind a ticket status notification.
type StatusChange struct {
	To        string
	Name      string
	Folio     string
	Service   string
	OldStatus domain.TicketStatus
	NewStatus domain.TicketStatus
}

// StatusChangeEmail renders the notification sent to a requester when an admin moves
// their ticket to a new status.
func StatusChangeEmail(in StatusChange) (Message, error) {
	name := in.Name
	if name == "" {
		name = in.To
	}
	data := struct {
		Name, Folio, Service, OldStatus, NewStatus string
	}{
		Name:      name,
		Folio:     in.Folio,
		Service:   in.Service,
		OldStatus: displayName(in.OldStatus),
		NewStatus: displayName(in.NewStatus),
	}

	var body bytes.Buffer
	if err := statusChangeTmpl.Execute(&body, data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      in.To,
		Subject: "Actualización del estado de tu ticket " + in.Folio,
		HTML:    body.String(),
	}, nil
}

func displayName(status domain.TicketStatus) string {
	if status == "" {
		return ""
	}
	return status.DisplayName()
}
