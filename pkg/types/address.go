package types

import (
	"fmt"
	"strings"
)

// Address is one delivery address as captured at checkout and stored on the
// customer's saved list.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	Complement   string `json:"complement,omitempty"`
	CEP          string `json:"cep,omitempty"`
	City         string `json:"city,omitempty"`
}

// Format renders the single-line form shown on order cards and stored in the
// order metadata blob.
func (a Address) Format() string {
	line := fmt.Sprintf("%s, %s - %s", a.Street, a.Number, a.Neighborhood)
	if strings.TrimSpace(a.Complement) != "" {
		line += fmt.Sprintf(" (%s)", a.Complement)
	}
	return line
}

// NormalizedCEP strips everything but digits from the postal code.
func (a Address) NormalizedCEP() string {
	var b strings.Builder
	for _, r := range a.CEP {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
