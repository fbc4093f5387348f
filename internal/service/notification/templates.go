package notification

import (
	htmltemplate "html/template"
	"text/template"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
)

type emailTemplate struct {
	subject *template.Template
	text    *template.Template
	html    *htmltemplate.Template
}

func mustTemplate(name, subject, text, html string) *emailTemplate {
	return &emailTemplate{
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		text:    template.Must(template.New(name + ".text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Parse(html)),
	}
}

var templates = map[string]*emailTemplate{
	model.EventAppointmentBooked: mustTemplate("booked",
		`Appointment request received`,
		`Hello {{.Patient.Name}},

Your appointment with {{.DoctorName}} on {{.AppointmentDate}} at {{.TimeSlot}} has been requested.
You will be notified once the doctor reviews it.
`,
		`<p>Hello {{.Patient.Name}},</p>
<p>Your appointment with <strong>{{.DoctorName}}</strong> on {{.AppointmentDate}} at {{.TimeSlot}} has been requested.</p>
<p>You will be notified once the doctor reviews it.</p>
`),

	model.EventAppointmentStatusUpdated: mustTemplate("status_updated",
		`Your appointment is now {{.Status}}`,
		`Hello {{.Patient.Name}},

Your appointment with {{.DoctorName}} on {{.AppointmentDate}} at {{.TimeSlot}} is now {{.Status}}.
{{if .Notes}}
Notes from your doctor: {{.Notes}}
{{end}}`,
		`<p>Hello {{.Patient.Name}},</p>
<p>Your appointment with <strong>{{.DoctorName}}</strong> on {{.AppointmentDate}} at {{.TimeSlot}} is now <strong>{{.Status}}</strong>.</p>
{{if .Notes}}<p>Notes from your doctor: {{.Notes}}</p>{{end}}
`),

	model.EventAppointmentCancelled: mustTemplate("cancelled",
		`Appointment cancelled`,
		`Hello {{.Patient.Name}},

Your appointment with {{.DoctorName}} on {{.AppointmentDate}} at {{.TimeSlot}} has been cancelled.
`,
		`<p>Hello {{.Patient.Name}},</p>
<p>Your appointment with <strong>{{.DoctorName}}</strong> on {{.AppointmentDate}} at {{.TimeSlot}} has been cancelled.</p>
`),

	model.EventDoctorProvisioned: mustTemplate("doctor_provisioned",
		`Welcome to Doctor Appointment`,
		`Hello {{.Name}},

An account has been created for you. Sign in with {{.Email}} to manage your profile and appointments.
`,
		`<p>Hello {{.Name}},</p>
<p>An account has been created for you. Sign in with <strong>{{.Email}}</strong> to manage your profile and appointments.</p>
`),
}
