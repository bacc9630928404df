package accounts

import "context"

// StaticMetadata is a MetadataProvider backed by fixed code sets. The
// portal's admin tool maintains these tables; this implementation covers
// deployments that serve them from configuration.
type StaticMetadata struct {
	PhoneTypes []string
	Leads      []string
}

// DefaultMetadata returns the portal's stock phone-type and lead-source
// code sets.
func DefaultMetadata() *StaticMetadata {
	return &StaticMetadata{
		PhoneTypes: []string{"CELL", "HOME", "WORK"},
		Leads:      []string{"WEBSITE", "NEWSPAPER", "RADIO", "SOCIAL", "FRIEND", LeadTypeOther},
	}
}

// PhoneNumberTypes implements MetadataProvider.
func (m *StaticMetadata) PhoneNumberTypes(ctx context.Context) ([]string, error) {
	return m.PhoneTypes, nil
}

// LeadTypes implements MetadataProvider.
func (m *StaticMetadata) LeadTypes(ctx context.Context) ([]string, error) {
	return m.Leads, nil
}
