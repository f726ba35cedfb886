package email

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

type templateKind string

const (
	kindConfirmation templateKind = "confirmation"
	kindCancellation templateKind = "cancellation"
	kindRejection    templateKind = "rejection"
	kindReminder     templateKind = "reminder"
)

type appointmentTemplate struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

var funcs = map[string]any{"longDate": longDate}

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: {{template "color" .}};">{{template "title" .}}</h2>
    <p>Hi {{.Patient.Name}},</p>
    {{template "body" .}}
    <div style="background-color: #f3f4f6; padding: 15px; border-radius: 6px; margin: 20px 0;">
        <p style="margin: 0;"><strong>Date:</strong> {{longDate .Date}}</p>
        <p style="margin: 0;"><strong>Time:</strong> {{.Time}}</p>
        <p style="margin: 0;"><strong>Nutritionist:</strong> {{.Nutritionist.Name}}</p>
        {{- if .Notes}}
        <p style="margin: 0;"><strong>Notes:</strong> {{.Notes}}</p>
        {{- end}}
    </div>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The {{.AppName}} Team</p>
</body>
</html>`

var templates = map[templateKind]appointmentTemplate{
	kindConfirmation: mustTemplate(
		"Appointment confirmed - {{longDate .Date}} {{.Time}}",
		`Hi {{.Patient.Name}},

Your nutrition appointment with {{.Nutritionist.Name}} is confirmed for {{longDate .Date}} at {{.Time}}.
{{if .MeetLink}}
Join the video call: {{.MeetLink}}
{{end}}{{if .CalendarLink}}
Calendar event: {{.CalendarLink}}
{{end}}
Thanks,
The {{.AppName}} Team`,
		`{{define "color"}}#16a34a{{end}}{{define "title"}}Appointment confirmed{{end}}
{{define "body"}}<p>Your nutrition appointment with {{.Nutritionist.Name}} is confirmed.</p>
    {{- if .MeetLink}}
    <p style="text-align: center; margin: 30px 0;"><a href="{{.MeetLink}}" style="background-color: #16a34a; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Join video call</a></p>
    {{- end}}
    {{- if .CalendarLink}}
    <p><a href="{{.CalendarLink}}">View in calendar</a></p>
    {{- end}}{{end}}`,
	),
	kindCancellation: mustTemplate(
		"Appointment cancelled - {{longDate .Date}} {{.Time}}",
		`Hi {{.Patient.Name}},

Your nutrition appointment with {{.Nutritionist.Name}} on {{longDate .Date}} at {{.Time}} has been cancelled.

You can request a new appointment at any time.

Thanks,
The {{.AppName}} Team`,
		`{{define "color"}}#dc2626{{end}}{{define "title"}}Appointment cancelled{{end}}
{{define "body"}}<p>Your nutrition appointment with {{.Nutritionist.Name}} has been cancelled. You can request a new appointment at any time.</p>{{end}}`,
	),
	kindRejection: mustTemplate(
		"Appointment request declined - {{longDate .Date}} {{.Time}}",
		`Hi {{.Patient.Name}},

{{.Nutritionist.Name}} could not accept your appointment request for {{longDate .Date}} at {{.Time}}.

Reason: {{.RejectionReason}}
{{if .Alternatives}}
Suggested alternatives:
{{range .Alternatives}}- {{longDate .Date}} at {{.Time}}{{if .Notes}} ({{.Notes}}){{end}}
{{end}}{{end}}
Thanks,
The {{.AppName}} Team`,
		`{{define "color"}}#d97706{{end}}{{define "title"}}Appointment request declined{{end}}
{{define "body"}}<p>{{.Nutritionist.Name}} could not accept your appointment request.</p>
    <p><strong>Reason:</strong> {{.RejectionReason}}</p>
    {{- if .Alternatives}}
    <p>Suggested alternatives:</p>
    <ul>{{range .Alternatives}}<li>{{longDate .Date}} at {{.Time}}{{if .Notes}} ({{.Notes}}){{end}}</li>{{end}}</ul>
    {{- end}}{{end}}`,
	),
	kindReminder: mustTemplate(
		"Reminder: appointment tomorrow - {{longDate .Date}} {{.Time}}",
		`Hi {{.Patient.Name}},

This is a reminder of your nutrition appointment with {{.Nutritionist.Name}} tomorrow, {{longDate .Date}} at {{.Time}}.
{{if .MeetLink}}
Join the video call: {{.MeetLink}}
{{end}}
Thanks,
The {{.AppName}} Team`,
		`{{define "color"}}#2563eb{{end}}{{define "title"}}See you tomorrow{{end}}
{{define "body"}}<p>This is a reminder of your nutrition appointment with {{.Nutritionist.Name}} tomorrow.</p>
    {{- if .MeetLink}}
    <p style="text-align: center; margin: 30px 0;"><a href="{{.MeetLink}}" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Join video call</a></p>
    {{- end}}{{end}}`,
	),
}

func mustTemplate(subject, text, html string) appointmentTemplate {
	h := htmltemplate.Must(htmltemplate.New("layout").Funcs(funcs).Parse(htmlLayout))
	htmltemplate.Must(h.Parse(html))
	return appointmentTemplate{
		subject: subject,
		text:    texttemplate.Must(texttemplate.New("text").Funcs(funcs).Parse(text)),
		html:    h,
	}
}

func render(kind templateKind, data AppointmentData) (subject, text, html string, err error) {
	t := templates[kind]

	subj, err := texttemplate.New("subject").Funcs(funcs).Parse(t.subject)
	if err != nil {
		return "", "", "", ErrRender{Template: string(kind), Err: err}
	}
	var sb, tb, hb bytes.Buffer
	if err := subj.Execute(&sb, data); err != nil {
		return "", "", "", ErrRender{Template: string(kind), Err: err}
	}
	if err := t.text.Execute(&tb, data); err != nil {
		return "", "", "", ErrRender{Template: string(kind), Err: err}
	}
	if err := t.html.ExecuteTemplate(&hb, "layout", data); err != nil {
		return "", "", "", ErrRender{Template: string(kind), Err: err}
	}
	return strings.TrimSpace(sb.String()), tb.String(), hb.String(), nil
}

// longDate renders 2025-03-10 as "Monday, March 10, 2025"; anything that
// does not parse is returned unchanged.
func longDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}
