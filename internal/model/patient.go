package model

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type Patient struct {
	Base
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Phone     string        `db:"phone" json:"phone"`
	Condition string        `db:"condition" json:"condition"`
	Age       int           `db:"age" json:"age"`
	Gender    Gender        `db:"gender" json:"gender"`
	Tags      []string      `db:"-" json:"tags"`
	LastVisit ISODate       `db:"last_visit" json:"last_visit,omitempty"`
	// NextVisit is a derived cache of the earliest future scheduled
	// appointment. It is recomputed after every appointment mutation
	// and nil when none remains.
	NextVisit *ISODate      `db:"next_visit" json:"next_appointment,omitempty"`
	Anamnesis string        `db:"anamnesis" json:"anamnesis,omitempty"`
	Status    PatientStatus `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	Name      string   `json:"name" binding:"required,max=200"`
	Email     string   `json:"email" binding:"required,email"`
	Phone     string   `json:"phone" binding:"max=30"`
	Condition string   `json:"condition" binding:"max=200"`
	Age       int      `json:"age" binding:"gte=0,lte=150"`
	Gender    Gender   `json:"gender" binding:"required,oneof=M F"`
	Tags      []string `json:"tags"`
	Anamnesis string   `json:"anamnesis"`
}

type UpdatePatientRequest struct {
	Name      *string   `json:"name" binding:"omitempty,max=200"`
	Email     *string   `json:"email" binding:"omitempty,email"`
	Phone     *string   `json:"phone" binding:"omitempty,max=30"`
	Condition *string   `json:"condition" binding:"omitempty,max=200"`
	Age       *int      `json:"age" binding:"omitempty,gte=0,lte=150"`
	Gender    *Gender   `json:"gender" binding:"omitempty,oneof=M F"`
	Tags      *[]string `json:"tags"`
	LastVisit *string   `json:"last_visit" binding:"omitempty,isodate"`
	Anamnesis *string   `json:"anamnesis"`
}

// PatientFilters narrows patient listings. Search matches name,
// condition and tags case-insensitively.
type PatientFilters struct {
	Search string
	Status PatientStatus
}
