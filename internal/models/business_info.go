package models

// ContactInfo holds contact details scraped from a page. All fields are
// best-effort; absence is not an error.
type ContactInfo struct {
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Website     string `json:"website,omitempty"`
	ContactForm string `json:"contact_form,omitempty"`
}

// BusinessInfo holds structured business facts extracted from page text
type BusinessInfo struct {
	CompanyName string            `json:"company_name,omitempty"`
	Description string            `json:"description,omitempty"`
	Contact     ContactInfo       `json:"contact,omitempty"`
	SocialMedia map[string]string `json:"social_media,omitempty"` // platform -> profile URL
	Address     string            `json:"address,omitempty"`
	Industry    string            `json:"industry,omitempty"`
	Founded     string            `json:"founded,omitempty"`
	Employees   string            `json:"employees,omitempty"`
}

// IsEmpty reports whether extraction found nothing at all
func (b *BusinessInfo) IsEmpty() bool {
	return b.CompanyName == "" && b.Description == "" &&
		b.Contact == (ContactInfo{}) && len(b.SocialMedia) == 0 &&
		b.Address == "" && b.Industry == "" && b.Founded == "" && b.Employees == ""
}
