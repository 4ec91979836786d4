package form

import "bjj-tournament/internal/models"

type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypeTel      FieldType = "tel"
	TypeDate     FieldType = "date"
	TypeNumber   FieldType = "number"
	TypeSelect   FieldType = "select"
	TypeReadOnly FieldType = "readonly"
	TypeFile     FieldType = "file"
)

// When makes a field conditional on the current value of another field.
type When struct {
	Field  string `json:"field"`
	Equals string `json:"equals"`
}

// Holds reports whether the condition is met. A nil condition always holds.
func (w *When) Holds(s *State) bool {
	return w == nil || s.Get(w.Field) == w.Equals
}

// Descriptor describes one form field. The same list drives rendering on the
// client and validation here, so a field that is not rendered is never
// required.
type Descriptor struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Section  string    `json:"section"`
	Required bool      `json:"required"`
	Options  string    `json:"options,omitempty"` // option list that feeds a select
	Suffix   string    `json:"suffix,omitempty"`
	Accept   string    `json:"accept,omitempty"`
	When     *When     `json:"visible_when,omitempty"`

	// Purpose is the storage folder for file fields.
	Purpose string `json:"-"`
	// Message overrides the generic "missing field" text.
	Message string `json:"-"`
}

func (d Descriptor) Visible(s *State) bool {
	return d.When.Holds(s)
}

func (d Descriptor) IsFile() bool {
	return d.Type == TypeFile
}

// Schema is the typed field list of one registration form plus the roles
// some fields play in derived behavior.
type Schema struct {
	Kind   models.Kind  `json:"type"`
	Fields []Descriptor `json:"fields"`

	DOBField      string `json:"-"`
	AgeField      string `json:"-"`
	EmailField    string `json:"-"`
	AcademyField  string `json:"-"`
	OverrideField string `json:"-"`
	WeightField   string `json:"-"`

	MissingDocsTitle   string `json:"-"`
	MissingDocsMessage string `json:"-"`
}

// Genders is the fixed gender list; it is not admin-curated.
var Genders = []string{"Masculino", "Femenino"}

const (
	sectionPersonal    = "personal"
	sectionCompetition = "competition"
	sectionGuardian    = "guardian"
	sectionDocuments   = "documents"

	acceptDocs = "image/*,application/pdf"
)

var adultSchema = &Schema{
	Kind: models.KindAdult,
	Fields: []Descriptor{
		{ID: "firstName", Label: "Nombre", Type: TypeText, Section: sectionPersonal, Required: true},
		{ID: "lastName", Label: "Apellido", Type: TypeText, Section: sectionPersonal, Required: true},
		{ID: "dni", Label: "DNI", Type: TypeText, Section: sectionPersonal, Required: true},
		{ID: "email", Label: "Email", Type: TypeEmail, Section: sectionPersonal, Required: true},
		{ID: "phoneContact", Label: "Celular de Contacto", Type: TypeTel, Section: sectionPersonal, Required: true},
		{ID: "dob", Label: "Fecha de Nacimiento", Type: TypeDate, Section: sectionPersonal, Required: true},
		{ID: "age", Label: "Edad", Type: TypeReadOnly, Section: sectionPersonal},
		{ID: "gender", Label: "Género", Type: TypeSelect, Section: sectionPersonal, Required: true, Options: "genders"},
		{ID: "academy", Label: "Academia", Type: TypeSelect, Section: sectionCompetition, Required: true, Options: string(models.OptionAcademies)},
		{
			ID: "otherAcademy", Label: "Nombre de Academia (Si es Otra)", Type: TypeText, Section: sectionCompetition, Required: true,
			When:    &When{Field: "academy", Equals: models.OtherAcademy},
			Message: "Por favor, especifica el nombre de tu academia.",
		},
		{ID: "professorName", Label: "Nombre del Profesor", Type: TypeText, Section: sectionCompetition, Required: true},
		{ID: "beltRank", Label: "Graduación", Type: TypeSelect, Section: sectionCompetition, Required: true, Options: string(models.OptionBeltRanks)},
		{ID: "ageCategory", Label: "Categoría (Edad)", Type: TypeSelect, Section: sectionCompetition, Required: true, Options: string(models.OptionAgeCategories)},
		{ID: "weightCategory", Label: "Categoría (Peso)", Type: TypeSelect, Section: sectionCompetition, Required: true, Options: string(models.OptionWeightCategories)},
		{ID: "paymentProof", Label: "Comprobante de Pago", Type: TypeFile, Section: sectionDocuments, Required: true, Accept: acceptDocs, Purpose: "payment_proofs"},
		{ID: "medicalCert", Label: "Apto Médico", Type: TypeFile, Section: sectionDocuments, Accept: acceptDocs, Purpose: "medical_certs"},
		{ID: "dniPhoto", Label: "Foto de DNI", Type: TypeFile, Section: sectionDocuments, Accept: acceptDocs, Purpose: "dni"},
	},
	DOBField:           "dob",
	AgeField:           "age",
	EmailField:         "email",
	AcademyField:       "academy",
	OverrideField:      "otherAcademy",
	MissingDocsTitle:   "Archivo Faltante",
	MissingDocsMessage: "Por favor, sube el comprobante de pago.",
}

var minorSchema = &Schema{
	Kind: models.KindMinor,
	Fields: []Descriptor{
		{ID: "childFirstName", Label: "Nombre del Menor", Type: TypeText, Section: sectionPersonal, Required: true},
		{ID: "childLastName", Label: "Apellido del Menor", Type: TypeText, Section: sectionPersonal, Required: true},
		{ID: "childDni", Label: "DNI del Menor", Type: TypeText, Section: sectionPersonal, Required: true},
		{ID: "childDob", Label: "Fecha de Nacimiento", Type: TypeDate, Section: sectionPersonal, Required: true},
		{ID: "childAge", Label: "Edad", Type: TypeReadOnly, Section: sectionPersonal},
		{ID: "childGender", Label: "Género", Type: TypeSelect, Section: sectionPersonal, Required: true, Options: "genders"},
		{ID: "childBeltRank", Label: "Graduación", Type: TypeSelect, Section: sectionCompetition, Required: true, Options: string(models.OptionBeltRanks)},
		{ID: "childAgeCategory", Label: "Categoría (Edad)", Type: TypeSelect, Section: sectionCompetition, Required: true, Options: string(models.OptionAgeCategories)},
		{ID: "childWeightKg", Label: "Peso", Type: TypeNumber, Section: sectionCompetition, Required: true, Suffix: "kg"},
		{ID: "childAcademy", Label: "Academia", Type: TypeSelect, Section: sectionCompetition, Required: true, Options: string(models.OptionAcademies)},
		{
			ID: "childOtherAcademy", Label: "Nombre de Academia (Si es Otra)", Type: TypeText, Section: sectionCompetition, Required: true,
			When:    &When{Field: "childAcademy", Equals: models.OtherAcademy},
			Message: "Por favor, especifica el nombre de la academia del menor.",
		},
		{ID: "childProfessorName", Label: "Nombre del Profesor", Type: TypeText, Section: sectionCompetition, Required: true},
		{ID: "parentName", Label: "Nombre y Apellido del Tutor", Type: TypeText, Section: sectionGuardian, Required: true},
		{ID: "parentDni", Label: "DNI del Tutor", Type: TypeText, Section: sectionGuardian, Required: true},
		{ID: "contactEmail", Label: "Mail de Contacto", Type: TypeEmail, Section: sectionGuardian, Required: true},
		{ID: "contactPhone", Label: "Celular de Contacto", Type: TypeTel, Section: sectionGuardian, Required: true},
		{ID: "paymentProof", Label: "Comprobante de Pago", Type: TypeFile, Section: sectionDocuments, Required: true, Accept: acceptDocs, Purpose: "payment_proofs"},
		{ID: "dniPhotoChild", Label: "Foto DNI del Menor", Type: TypeFile, Section: sectionDocuments, Required: true, Accept: acceptDocs, Purpose: "dni_child"},
		{ID: "dniPhotoParent", Label: "Foto DNI del Tutor", Type: TypeFile, Section: sectionDocuments, Required: true, Accept: acceptDocs, Purpose: "dni_parent"},
		{ID: "medicalCert", Label: "Apto Médico", Type: TypeFile, Section: sectionDocuments, Accept: acceptDocs, Purpose: "medical_certs"},
	},
	DOBField:           "childDob",
	AgeField:           "childAge",
	EmailField:         "contactEmail",
	AcademyField:       "childAcademy",
	OverrideField:      "childOtherAcademy",
	WeightField:        "childWeightKg",
	MissingDocsTitle:   "Archivos Faltantes",
	MissingDocsMessage: "Por favor, sube el Comprobante de Pago y las Fotos de DNI (menor y tutor).",
}

// SchemaFor returns the form schema of a registrant kind.
func SchemaFor(kind models.Kind) *Schema {
	if kind == models.KindMinor {
		return minorSchema
	}
	return adultSchema
}

// Field looks up a descriptor by id.
func (s *Schema) Field(id string) (Descriptor, bool) {
	for _, d := range s.Fields {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Documents returns the file fields in upload order.
func (s *Schema) Documents() []Descriptor {
	var out []Descriptor
	for _, d := range s.Fields {
		if d.IsFile() {
			out = append(out, d)
		}
	}
	return out
}

// Visible returns the descriptors whose condition holds for st, the list a
// renderer should draw.
func (s *Schema) Visible(st *State) []Descriptor {
	out := make([]Descriptor, 0, len(s.Fields))
	for _, d := range s.Fields {
		if d.Visible(st) {
			out = append(out, d)
		}
	}
	return out
}
