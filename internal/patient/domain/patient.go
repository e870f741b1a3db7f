package domain

import "time"

// Patient is owned by exactly one user. UserID is set at creation and never changes.
type Patient struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Age       *int       `json:"age,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Email     string     `json:"email,omitempty"`
	Diagnosis string     `json:"diagnosis,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// SearchFields are matched by the ?q= filter, most relevant first
func (p *Patient) SearchFields() []string {
	return []string{p.Name, p.Diagnosis, p.Email, p.Phone}
}
