package calendar

import gcal "google.golang.org/api/calendar/v3"

// Appointment is what an event is built from. Date is YYYY-MM-DD and Time is
// HH:MM in the calendar's time zone.
type Appointment struct {
	ID                string
	PatientName       string
	PatientEmail      string
	NutritionistName  string
	NutritionistEmail string
	Date              string
	Time              string
	Notes             string
}

type Result struct {
	EventID   string
	EventLink string
	MeetLink  string
}

func resultOf(ev *gcal.Event) Result {
	if ev == nil {
		return Result{}
	}
	r := Result{EventID: ev.Id, EventLink: ev.HtmlLink, MeetLink: ev.HangoutLink}
	if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			if ep.EntryPointType == "" || ep.EntryPointType == "video" {
				r.MeetLink = ep.Uri
				break
			}
		}
	}
	return r
}
