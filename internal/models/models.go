package models

import (
	"strings"
	"time"
)

// Kind is the registrant type. Adults and minors have separate forms, tables
// and storage prefixes.
type Kind string

const (
	KindAdult Kind = "adult"
	KindMinor Kind = "minor"
)

// ParseKind accepts both the singular and the plural (URL) spelling.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adult", "adults":
		return KindAdult, true
	case "minor", "minors":
		return KindMinor, true
	}
	return "", false
}

// Prefix is the registration ID type segment.
func (k Kind) Prefix() string {
	if k == KindMinor {
		return "MENOR"
	}
	return "ADULTO"
}

// Category is the plural form used in storage paths and URLs.
func (k Kind) Category() string {
	if k == KindMinor {
		return "minors"
	}
	return "adults"
}

func (k Kind) Table() string {
	return k.Category() + "_registrations"
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

type AdultRegistration struct {
	ID                 string    `json:"id"`
	RegistrationID     string    `json:"registration_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	DNI                string    `json:"dni"`
	Email              string    `json:"email"`
	PhoneContact       string    `json:"phone_contact"`
	DOB                string    `json:"dob"` // YYYY-MM-DD
	Age                *int      `json:"age"`
	Gender             string    `json:"gender"`
	Academy            string    `json:"academy"`
	OtherAcademy       *string   `json:"other_academy"`
	ProfessorName      string    `json:"professor_name"`
	BeltRank           string    `json:"belt_rank"`
	AgeCategory        string    `json:"age_category"`
	WeightCategory     string    `json:"weight_category"`
	PaymentProofURL    string    `json:"payment_proof_url"`
	MedicalCertURL     *string   `json:"medical_cert_url"`
	DNIPhotoURL        *string   `json:"dni_photo_url"`
	RegistrationStatus string    `json:"registration_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DisplayAcademy resolves the "Otra" sentinel to the free-text override.
func (r AdultRegistration) DisplayAcademy() string {
	return displayAcademy(r.Academy, r.OtherAcademy)
}

type MinorRegistration struct {
	ID                 string    `json:"id"`
	RegistrationID     string    `json:"registration_id"`
	ChildFirstName     string    `json:"child_first_name"`
	ChildLastName      string    `json:"child_last_name"`
	ChildDNI           string    `json:"child_dni"`
	ChildDOB           string    `json:"child_dob"`
	ChildAge           *int      `json:"child_age"`
	ChildGender        string    `json:"child_gender"`
	ChildBeltRank      string    `json:"child_belt_rank"`
	ChildAgeCategory   string    `json:"child_age_category"`
	ChildWeightKg      *float64  `json:"child_weight_kg"`
	ChildAcademy       string    `json:"child_academy"`
	ChildOtherAcademy  *string   `json:"child_other_academy"`
	ChildProfessorName string    `json:"child_professor_name"`
	ParentName         string    `json:"parent_name"`
	ParentDNI          string    `json:"parent_dni"`
	ParentEmail        string    `json:"parent_email"`
	ParentPhone        string    `json:"parent_phone"`
	PaymentProofURL    string    `json:"payment_proof_url"`
	MedicalCertURL     *string   `json:"medical_cert_url"`
	DNIPhotoChildURL   string    `json:"dni_photo_child_url"`
	DNIPhotoParentURL  string    `json:"dni_photo_parent_url"`
	RegistrationStatus string    `json:"registration_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (r MinorRegistration) DisplayAcademy() string {
	return displayAcademy(r.ChildAcademy, r.ChildOtherAcademy)
}

// OtherAcademy is the select value that unlocks the free-text academy field.
const OtherAcademy = "Otra"

func displayAcademy(academy string, other *string) string {
	if academy == OtherAcademy && other != nil && *other != "" {
		return *other
	}
	return academy
}

// OptionCategory names one admin-curated select list.
type OptionCategory string

const (
	OptionAcademies        OptionCategory = "academies"
	OptionBeltRanks        OptionCategory = "belt_ranks"
	OptionAgeCategories    OptionCategory = "age_categories"
	OptionWeightCategories OptionCategory = "weight_categories"
)

func ParseOptionCategory(s string) (OptionCategory, bool) {
	c := OptionCategory(s)
	switch c {
	case OptionAcademies, OptionBeltRanks, OptionAgeCategories, OptionWeightCategories:
		return c, true
	}
	return "", false
}

// Typed reports whether the category is split by registrant type.
func (c OptionCategory) Typed() bool {
	return c == OptionBeltRanks || c == OptionAgeCategories
}

func (c OptionCategory) Table() string {
	return string(c) + "_options"
}

type OptionItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	Type         string `json:"type,omitempty"` // adult|minor, typed categories only
}

// ContentEntry is one row of the key/value site content table. Value holds the
// raw JSON document, normally {"value": "..."}.
type ContentEntry struct {
	Key   string `json:"element_key"`
	Value []byte `json:"content_value"`
}

type Sponsor struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	LogoURL      string `json:"logo_url"`
	WebsiteURL   string `json:"website_url"`
	InstagramURL string `json:"instagram_url"`
	FacebookURL  string `json:"facebook_url"`
	TwitterURL   string `json:"twitter_url"`
	DisplayOrder int    `json:"display_order"`
}

type GalleryItem struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"` // image|video
	Title        string `json:"title"`
	AltText      string `json:"alt_text"`
	ImageURL     string `json:"image_url"`
	VideoURL     string `json:"video_url"`
	DisplayOrder int    `json:"display_order"`
}

type PaymentInstruction struct {
	ID             int64  `json:"id"`
	InstructionKey string `json:"instruction_key"`
	Label          string `json:"label"`
	Value          string `json:"value"`
	Details        string `json:"details"`
	DisplayOrder   int    `json:"display_order"`
}

type Admin struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	PassHash string `json:"-"`
}

type LogEntry struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
