// Package contact accepts the storefront's write-once forms: contact
// messages and service requests.
package contact

import (
	"sort"
	"strings"
)

// Message maps to the `contact_messages` table.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Request maps to the `customer_requests` table.
type Request struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Details string `json:"details"`
}

// ValidationError lists required fields that were empty after trimming.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (m *Message) normalize() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)
	return required(map[string]string{"name": m.Name, "email": m.Email, "message": m.Message})
}

func (r *Request) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Service = strings.TrimSpace(r.Service)
	r.Details = strings.TrimSpace(r.Details)
	return required(map[string]string{"name": r.Name, "service": r.Service})
}

func required(fields map[string]string) error {
	var missing []string
	for k, v := range fields {
		if v == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &ValidationError{Fields: missing}
}

// Info is the static contact block of the contact page.
type Info struct {
	Phone      string `json:"phone"`
	PhoneHours string `json:"phone_hours"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	FAQ        []FAQ  `json:"faq"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func StoreInfo() Info {
	return Info{
		Phone:      "+1 (555) 123-4567",
		PhoneHours: "Mon-Fri, 9am-6pm EST",
		Email:      "info@gpower.com",
		Address:    "123 Solar Avenue, Green City, CA 90210, United States",
		FAQ: []FAQ{
			{"How long does installation take?", "Most residential installations are completed within 1-3 days, depending on the system size and complexity."},
			{"What warranty do you offer?", "All our solar panels come with a 25-year performance warranty and a 10-year product warranty."},
			{"Do you offer financing options?", "Yes, we offer flexible financing options including zero-down payment plans and competitive interest rates."},
			{"What maintenance is required?", "Solar panels require minimal maintenance. We recommend annual inspections and occasional cleaning for optimal performance."},
		},
	}
}
