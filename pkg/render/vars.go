package render

// NotificationVars carries the full variable set of the admin
// notification template. Building the map through Vars() guarantees
// every placeholder key the template may reference is present.
type NotificationVars struct {
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
	Priority    string
	Category    string
	CreatedAt   string
	AdminURL    string
	MessageID   string
	CompanyName string
}

func (v NotificationVars) Vars() Vars {
	return Vars{
		"senderName":  v.SenderName,
		"senderEmail": v.SenderEmail,
		"subject":     v.Subject,
		"message":     v.Message,
		"priority":    v.Priority,
		"category":    v.Category,
		"createdAt":   v.CreatedAt,
		"adminUrl":    v.AdminURL,
		"messageId":   v.MessageID,
		"companyName": v.CompanyName,
	}
}

// ReplyVars carries the full variable set of the reply and
// auto-reply templates.
type ReplyVars struct {
	SenderName      string
	ReplyContent    string
	OriginalMessage string
	OriginalSubject string
	AdminName       string
	CompanyName     string
	CompanyEmail    string
}

func (v ReplyVars) Vars() Vars {
	return Vars{
		"sender_name":      v.SenderName,
		"reply_content":    v.ReplyContent,
		"original_message": v.OriginalMessage,
		"original_subject": v.OriginalSubject,
		"admin_name":       v.AdminName,
		"company_name":     v.CompanyName,
		"company_email":    v.CompanyEmail,
	}
}
