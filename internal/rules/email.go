package rules

import (
	"fmt"
	"strings"

	"timesheet-api/internal/domain"
)

// EmailPolicy is the configured domain policy for customer emails.
type EmailPolicy struct {
	AllowedDomains []string
	DefaultDomain  string
}

// Normalize trims and lowercases email and appends the default domain when
// the address has none.
func (p EmailPolicy) Normalize(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return email
	}
	if !strings.Contains(email, "@") && p.DefaultDomain != "" {
		email = email + "@" + strings.ToLower(p.DefaultDomain)
	}
	return email
}

// Check enforces the allow-list. An empty allow-list accepts any domain.
func (p EmailPolicy) Check(email string) error {
	if len(p.AllowedDomains) == 0 {
		return nil
	}
	_, domainPart, ok := strings.Cut(email, "@")
	if ok {
		for _, d := range p.AllowedDomains {
			if strings.EqualFold(d, domainPart) {
				return nil
			}
		}
	}
	err := *domain.ErrEmailDomainNotAllowed
	err.Message = fmt.Sprintf("Please provide an email with valid domain. Supported domains are: %s",
		strings.Join(p.AllowedDomains, ", "))
	return &err
}
