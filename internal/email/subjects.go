package email

const (
	subjectSeminarConfirmationFmt  = "You're registered: %s"
	subjectSeminarReminderFmt      = "Reminder: %s is tomorrow"
	subjectAppointmentConfirmation = "Your consultation is confirmed"
	subjectLeadAlertFmt            = "New qualified lead: %s (%d/100)"
)
