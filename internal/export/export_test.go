package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bjj-tournament/internal/models"
)

func TestWriteCSV_QuotesEveryValue(t *testing.T) {
	tbl := Table{
		Header: []string{"name", "note"},
		Rows: [][]string{
			{`Ana "La Roca" Pérez`, ""},
			{"Tomás, Jr.", "línea\nnueva"},
		},
	}
	var buf bytes.Buffer

	require.NoError(t, WriteCSV(&buf, tbl))

	assert.Equal(t, "name,note\n\"Ana \"\"La Roca\"\" Pérez\",\"\"\n\"Tomás, Jr.\",\"línea\nnueva\"\n", buf.String())
}

func TestAdults_Columns(t *testing.T) {
	age := 30
	other := "Team Norte"
	created := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tbl := Adults([]models.AdultRegistration{{
		ID: "u1", RegistrationID: "TORNEO-ADULTO-00001", FirstName: "Ana", Age: &age,
		Academy: "Otra", OtherAcademy: &other, RegistrationStatus: "pending", CreatedAt: created,
	}})

	require.Len(t, tbl.Rows, 1)
	require.Len(t, tbl.Rows[0], len(tbl.Header))
	col := func(name string) string {
		for i, h := range tbl.Header {
			if h == name {
				return tbl.Rows[0][i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}
	assert.Equal(t, "30", col("age"))
	assert.Equal(t, "Team Norte", col("other_academy"))
	assert.Equal(t, "", col("medical_cert_url"))
	assert.Equal(t, "2025-06-15T10:00:00Z", col("created_at"))
}

func TestMinors_Columns(t *testing.T) {
	w := 38.5
	tbl := Minors([]models.MinorRegistration{{RegistrationID: "TORNEO-MENOR-00001", ChildWeightKg: &w}})

	require.Len(t, tbl.Rows[0], len(tbl.Header))
	assert.True(t, strings.Contains(strings.Join(tbl.Rows[0], "|"), "|38.5|"))
	assert.False(t, tbl.Empty())
	assert.True(t, Minors(nil).Empty())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "inscripciones_adultos", Filename(models.KindAdult))
	assert.Equal(t, "inscripciones_menores", Filename(models.KindMinor))
	assert.Equal(t, "Menores", TabName(models.KindMinor))
	assert.Equal(t, "Adultos", TabName(models.KindAdult))
}
