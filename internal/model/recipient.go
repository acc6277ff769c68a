package model

// Recipient is a report email recipient stored in the application
// database (report_recipients). IDs are UUIDs generated by the database.
type Recipient struct {
	ID             string  `json:"id"`              // report_recipients.id
	Email          string  `json:"email"`           // report_recipients.email
	Name           *string `json:"name"`            // report_recipients.name (nullable)
	OrganizationID *string `json:"organization_id"` // report_recipients.organization_id (nullable)
	IsActive       bool    `json:"is_active"`       // report_recipients.is_active
	CreatedAt      string  `json:"created_at"`      // report_recipients.created_at
	UpdatedAt      string  `json:"updated_at"`      // report_recipients.updated_at
}
