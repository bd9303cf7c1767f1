package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/domain"
)

func TestEmailPolicy_DisallowedDomain(t *testing.T) {
	p := EmailPolicy{AllowedDomains: []string{"acme.com"}}
	email := p.Normalize("bob@gmail.com")
	assert.Equal(t, "bob@gmail.com", email)

	err := p.Check(email)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailDomainNotAllowed))
	assert.Contains(t, err.Error(), "acme.com")
}

func TestEmailPolicy_DefaultDomainFill(t *testing.T) {
	p := EmailPolicy{DefaultDomain: "acme.com"}
	email := p.Normalize("bob")
	assert.Equal(t, "bob@acme.com", email)
	assert.NoError(t, p.Check(email))
}

func TestEmailPolicy_NoDefaultLeavesLocalPart(t *testing.T) {
	p := EmailPolicy{AllowedDomains: []string{"acme.com"}}
	email := p.Normalize(" Bob ")
	assert.Equal(t, "bob", email)
	assert.Error(t, p.Check(email))
}

func TestEmailPolicy_AllowedCaseInsensitive(t *testing.T) {
	p := EmailPolicy{AllowedDomains: []string{"Acme.com"}, DefaultDomain: "acme.com"}
	assert.NoError(t, p.Check(p.Normalize("Alice@ACME.com")))
	assert.NoError(t, p.Check(p.Normalize("alice")))
}
