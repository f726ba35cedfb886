package email

import "context"

// SendConfirmation mails the patient, copying the nutritionist.
func (c *Client) SendConfirmation(ctx context.Context, data AppointmentData) error {
	return c.sendAppointment(ctx, kindConfirmation, data, true)
}

// SendCancellation mails the patient, copying the nutritionist.
func (c *Client) SendCancellation(ctx context.Context, data AppointmentData) error {
	return c.sendAppointment(ctx, kindCancellation, data, true)
}

func (c *Client) SendRejection(ctx context.Context, data AppointmentData) error {
	return c.sendAppointment(ctx, kindRejection, data, false)
}

func (c *Client) SendReminder(ctx context.Context, data AppointmentData) error {
	return c.sendAppointment(ctx, kindReminder, data, false)
}

func (c *Client) sendAppointment(ctx context.Context, kind templateKind, data AppointmentData, ccNutritionist bool) error {
	if !c.IsConfigured() {
		return ErrDisabled{}
	}
	if data.Patient.Email == "" {
		return ErrInvalidMessage{Reason: "patient email is required"}
	}
	if data.AppName == "" {
		data.AppName = c.cfg.AppName
	}
	if data.BaseURL == "" {
		data.BaseURL = c.cfg.BaseURL
	}

	subject, text, html, err := render(kind, data)
	if err != nil {
		return err
	}

	msg := Message{
		To:       []string{data.Patient.Email},
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
		Headers:  map[string]string{"X-Appointment-Event": string(kind)},
	}
	if ccNutritionist && data.Nutritionist.Email != "" {
		msg.CC = []string{data.Nutritionist.Email}
	}
	return c.Send(ctx, msg)
}
