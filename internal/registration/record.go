package registration

import (
	"strconv"
	"strings"

	"bjj-tournament/internal/form"
	"bjj-tournament/internal/models"
	"bjj-tournament/internal/notify"
)

func val(st *form.State, field string) string {
	return strings.TrimSpace(st.Get(field))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ageOf(st *form.State) *int {
	if a, ok := st.Age(); ok {
		return &a
	}
	return nil
}

func academyOverride(st *form.State, academyField, overrideField string) *string {
	if st.Get(academyField) != models.OtherAcademy {
		return nil
	}
	return optional(val(st, overrideField))
}

func buildAdult(id string, st *form.State, urls map[string]string) *models.AdultRegistration {
	return &models.AdultRegistration{
		RegistrationID:     id,
		FirstName:          val(st, "firstName"),
		LastName:           val(st, "lastName"),
		DNI:                val(st, "dni"),
		Email:              val(st, "email"),
		PhoneContact:       val(st, "phoneContact"),
		DOB:                val(st, "dob"),
		Age:                ageOf(st),
		Gender:             val(st, "gender"),
		Academy:            val(st, "academy"),
		OtherAcademy:       academyOverride(st, "academy", "otherAcademy"),
		ProfessorName:      val(st, "professorName"),
		BeltRank:           val(st, "beltRank"),
		AgeCategory:        val(st, "ageCategory"),
		WeightCategory:     val(st, "weightCategory"),
		PaymentProofURL:    urls["paymentProof"],
		MedicalCertURL:     optional(urls["medicalCert"]),
		DNIPhotoURL:        optional(urls["dniPhoto"]),
		RegistrationStatus: models.StatusPending,
	}
}

func buildMinor(id string, st *form.State, urls map[string]string) *models.MinorRegistration {
	var weight *float64
	if w, err := strconv.ParseFloat(val(st, "childWeightKg"), 64); err == nil {
		weight = &w
	}
	return &models.MinorRegistration{
		RegistrationID:     id,
		ChildFirstName:     val(st, "childFirstName"),
		ChildLastName:      val(st, "childLastName"),
		ChildDNI:           val(st, "childDni"),
		ChildDOB:           val(st, "childDob"),
		ChildAge:           ageOf(st),
		ChildGender:        val(st, "childGender"),
		ChildBeltRank:      val(st, "childBeltRank"),
		ChildAgeCategory:   val(st, "childAgeCategory"),
		ChildWeightKg:      weight,
		ChildAcademy:       val(st, "childAcademy"),
		ChildOtherAcademy:  academyOverride(st, "childAcademy", "childOtherAcademy"),
		ChildProfessorName: val(st, "childProfessorName"),
		ParentName:         val(st, "parentName"),
		ParentDNI:          val(st, "parentDni"),
		ParentEmail:        val(st, "contactEmail"),
		ParentPhone:        val(st, "contactPhone"),
		PaymentProofURL:    urls["paymentProof"],
		MedicalCertURL:     optional(urls["medicalCert"]),
		DNIPhotoChildURL:   urls["dniPhotoChild"],
		DNIPhotoParentURL:  urls["dniPhotoParent"],
		RegistrationStatus: models.StatusPending,
	}
}

func adultConfirmation(r *models.AdultRegistration, tournament string) notify.Confirmation {
	return notify.Confirmation{
		To:             r.Email,
		RegistrationID: r.RegistrationID,
		TournamentName: tournament,
		Type:           string(models.KindAdult),
		RegistrantName: r.FirstName + " " + r.LastName,
		DNI:            r.DNI,
		Academy:        r.DisplayAcademy(),
		BeltRank:       r.BeltRank,
		Category:       r.AgeCategory + " / " + r.WeightCategory,
	}
}

func minorConfirmation(r *models.MinorRegistration, tournament string) notify.Confirmation {
	return notify.Confirmation{
		To:             r.ParentEmail,
		RegistrationID: r.RegistrationID,
		TournamentName: tournament,
		Type:           string(models.KindMinor),
		RegistrantName: r.ChildFirstName + " " + r.ChildLastName,
		GuardianName:   r.ParentName,
		DNI:            r.ChildDNI,
		Academy:        r.DisplayAcademy(),
		BeltRank:       r.ChildBeltRank,
		Category:       r.ChildAgeCategory,
	}
}

func alertFor(c notify.Confirmation) notify.Alert {
	return notify.Alert{
		RegistrationID: c.RegistrationID,
		Type:           c.Type,
		Name:           c.RegistrantName,
		Academy:        c.Academy,
		Category:       c.Category,
	}
}
