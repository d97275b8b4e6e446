package models

// Patient is the demographic profile of the signed-in user. It is owned by
// the user that created it; nothing enforces one profile per owner, reads
// take the oldest record.
type Patient struct {
	BaseModel
	Owner          string `gorm:"size:36;index;not null" json:"owner"`
	FirstName      string `gorm:"size:100;not null" json:"firstName"`
	LastName       string `gorm:"size:100;not null" json:"lastName"`
	DateOfBirth    string `gorm:"size:10;not null" json:"dateOfBirth"`
	Email          string `gorm:"size:255;not null" json:"email"`
	PhoneNumber    string `gorm:"size:50" json:"phoneNumber,omitempty"`
	Address        string `gorm:"size:255" json:"address,omitempty"`
	MedicalHistory string `gorm:"type:text" json:"medicalHistory,omitempty"`
}

// FullName is what the dashboard greets the patient with.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
