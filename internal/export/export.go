// Package export flattens registrations into tables for CSV download and the
// organizers' spreadsheet.
package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"bjj-tournament/internal/models"
)

// Table is a header plus rows of equal width.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intStr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func floatStr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var adultHeader = []string{
	"id", "registration_id", "first_name", "last_name", "dni", "email", "phone_contact", "dob", "age",
	"gender", "academy", "other_academy", "professor_name", "belt_rank", "age_category",
	"weight_category", "payment_proof_url", "medical_cert_url", "dni_photo_url",
	"registration_status", "created_at", "updated_at",
}

func Adults(rs []models.AdultRegistration) Table {
	t := Table{Header: adultHeader}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{
			r.ID, r.RegistrationID, r.FirstName, r.LastName, r.DNI, r.Email, r.PhoneContact, r.DOB, intStr(r.Age),
			r.Gender, r.Academy, str(r.OtherAcademy), r.ProfessorName, r.BeltRank, r.AgeCategory,
			r.WeightCategory, r.PaymentProofURL, str(r.MedicalCertURL), str(r.DNIPhotoURL),
			r.RegistrationStatus, ts(r.CreatedAt), ts(r.UpdatedAt),
		})
	}
	return t
}

var minorHeader = []string{
	"id", "registration_id", "child_first_name", "child_last_name", "child_dni", "child_dob", "child_age",
	"child_gender", "child_belt_rank", "child_age_category", "child_weight_kg", "child_academy",
	"child_other_academy", "child_professor_name", "parent_name", "parent_dni", "parent_email",
	"parent_phone", "payment_proof_url", "medical_cert_url", "dni_photo_child_url",
	"dni_photo_parent_url", "registration_status", "created_at", "updated_at",
}

func Minors(rs []models.MinorRegistration) Table {
	t := Table{Header: minorHeader}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{
			r.ID, r.RegistrationID, r.ChildFirstName, r.ChildLastName, r.ChildDNI, r.ChildDOB, intStr(r.ChildAge),
			r.ChildGender, r.ChildBeltRank, r.ChildAgeCategory, floatStr(r.ChildWeightKg), r.ChildAcademy,
			str(r.ChildOtherAcademy), r.ChildProfessorName, r.ParentName, r.ParentDNI, r.ParentEmail,
			r.ParentPhone, r.PaymentProofURL, str(r.MedicalCertURL), r.DNIPhotoChildURL,
			r.DNIPhotoParentURL, r.RegistrationStatus, ts(r.CreatedAt), ts(r.UpdatedAt),
		})
	}
	return t
}

// Filename is the download name without extension.
func Filename(kind models.Kind) string {
	if kind == models.KindMinor {
		return "inscripciones_menores"
	}
	return "inscripciones_adultos"
}

// WriteCSV writes the header as is and every value double-quoted, with
// embedded quotes doubled. Lines end in "\n".
func WriteCSV(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(t.Header, ","))
	for _, row := range t.Rows {
		bw.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(v, `"`, `""`))
			bw.WriteByte('"')
		}
	}
	bw.WriteByte('\n')
	return bw.Flush()
}
