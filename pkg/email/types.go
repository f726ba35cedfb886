package email

type Message struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

type Person struct {
	Name  string
	Email string
}

type Slot struct {
	Date  string
	Time  string
	Notes string
}

// AppointmentData feeds every appointment template. Date is YYYY-MM-DD and
// Time is HH:MM.
type AppointmentData struct {
	Patient      Person
	Nutritionist Person

	Date   string
	Time   string
	Type   string
	Reason string
	Notes  string

	RejectionReason string
	Alternatives    []Slot

	CalendarLink string
	MeetLink     string

	// Filled from Config when empty.
	AppName string
	BaseURL string
}
