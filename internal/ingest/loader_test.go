package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_CSV(t *testing.T) {
	content := `ID,Entidad,Relación,Elemento Relacionado
44303,Greasy stools,Symptom1 implies Symptom2,Diarrhea
44304,High fever,Symptom1 implies Symptom2,Increased appetite
`
	path := writeTemp(t, "relations.csv", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "44303" {
		t.Errorf("expected id 44303, got %s", rec.ID)
	}
	if rec.Entity() != "Greasy stools" || rec.Relation() != "Symptom1 implies Symptom2" || rec.Related() != "Diarrhea" {
		t.Errorf("unexpected fields: %+v", rec.Fields)
	}
	// Original column names travel along too.
	if rec.Fields["Entidad"] != "Greasy stools" {
		t.Errorf("expected original column preserved, got %q", rec.Fields["Entidad"])
	}
}

func TestLoader_CSVEnglishHeaders(t *testing.T) {
	content := `id,entity,relation,related
1,Fever,implies,Chills
`
	path := writeTemp(t, "relations.csv", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 || records[0].Entity() != "Fever" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoader_CSVMissingColumns(t *testing.T) {
	path := writeTemp(t, "bad.csv", "Foo,Bar\n1,2\n")

	if _, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load(); err == nil {
		t.Error("expected error for missing identifier column")
	}
}

func TestLoader_CSVGarbageRows(t *testing.T) {
	content := `ID,Entidad,Relación,Elemento Relacionado
1,Fever,implies,Chills
2,,implies,Chills
3,Cough,implies,
4,Nausea,implies,Vomiting
`
	path := writeTemp(t, "relations.csv", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records after garbage removal, got %d", len(records))
	}
	if records[0].ID != "1" || records[1].ID != "4" {
		t.Errorf("unexpected survivors: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestLoader_JSON(t *testing.T) {
	content := `[
		{"ID": "44303", "Entidad": "Greasy stools", "Relación": "Symptom1 implies Symptom2", "Elemento Relacionado": "Diarrhea"},
		{"ID": "44304", "Entidad": "High fever", "Relación": "Symptom1 implies Symptom2", "Elemento Relacionado": "Increased appetite"}
	]`
	path := writeTemp(t, "relations.json", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].ID != "44304" || records[1].Related() != "Increased appetite" {
		t.Errorf("unexpected record: %+v", records[1])
	}
}

func TestLoader_TXTOriginalFormat(t *testing.T) {
	content := `44310: (Tumores neuroendocrinos gastrointestinales (TNEG) y de páncreas,Group can be observed in Anatomy,Páncreas)
44311: (Fiebre alta,Symptom1 implies Symptom2,Escalofríos)
`
	path := writeTemp(t, "relations.txt", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "44310" {
		t.Errorf("expected id 44310, got %s", rec.ID)
	}
	if rec.Entity() != "Tumores neuroendocrinos gastrointestinales (TNEG) y de páncreas" {
		t.Errorf("unexpected entity: %q", rec.Entity())
	}
	if rec.Relation() != "Group can be observed in Anatomy" {
		t.Errorf("unexpected relation: %q", rec.Relation())
	}
	if rec.Related() != "Páncreas" {
		t.Errorf("unexpected related: %q", rec.Related())
	}
}

func TestLoader_TXTExtendedFormat(t *testing.T) {
	content := `167: (11 (Alergia alimentaria), Disease is in the domain of Specialty, 98 (Alergología)) 1.000000,
`
	path := writeTemp(t, "relations.txt", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "167" {
		t.Errorf("expected id 167, got %s", rec.ID)
	}
	if rec.Entity() != "Alergia alimentaria" || rec.Related() != "Alergología" {
		t.Errorf("unexpected fields: %+v", rec.Fields)
	}
	if rec.Fields["code1"] != "11" || rec.Fields["code2"] != "98" || rec.Fields["score"] != "1.000000" {
		t.Errorf("extended fields lost: %+v", rec.Fields)
	}
}

func TestLoader_TXTNestedFormat(t *testing.T) {
	content := `235571: (16172 (ICD-11 : BlockL1-7A2( Hypersomnolence disorders)), The prevalence of hypersomnolence, 641 (Población general)) 0.000500,
`
	path := writeTemp(t, "relations.txt", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "235571" {
		t.Errorf("expected id 235571, got %s", rec.ID)
	}
	if rec.Entity() != "ICD-11 : BlockL1-7A2( Hypersomnolence disorders)" {
		t.Errorf("unexpected entity: %q", rec.Entity())
	}
	if rec.Related() != "Población general" {
		t.Errorf("unexpected related: %q", rec.Related())
	}
	if rec.Fields["score"] != "0.000500" {
		t.Errorf("unexpected score: %q", rec.Fields["score"])
	}
}

func TestLoader_TXTMalformedLines(t *testing.T) {
	content := `44310: (Fiebre,implies,Escalofríos)
this line is garbage
44311: (Tos,implies,Dolor de garganta)
`
	path := writeTemp(t, "relations.txt", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestLoader_TXTAllGarbage(t *testing.T) {
	path := writeTemp(t, "relations.txt", "nothing here\nnope\n")

	if _, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load(); err == nil {
		t.Error("expected error when no line parses")
	}
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	path := writeTemp(t, "relations.xlsx", "binary")

	if _, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load(); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoader_PackedSingleColumn(t *testing.T) {
	content := "A\n\"44310: (Fiebre,implies,Escalofríos)\"\n"
	path := writeTemp(t, "packed.csv", content)

	records, err := NewLoader(path, DefaultOptions(), zerolog.Nop()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 || records[0].ID != "44310" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoadFiles_OrderPreserved(t *testing.T) {
	first := writeTemp(t, "a.csv", "ID,Entidad,Relación,Elemento Relacionado\n1,A,rel,B\n")
	second := writeTemp(t, "b.csv", "ID,Entidad,Relación,Elemento Relacionado\n2,C,rel,D\n")

	records, err := LoadFiles(context.Background(), DefaultOptions(), zerolog.Nop(), first, second)
	if err != nil {
		t.Fatalf("load files: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1" || records[1].ID != "2" {
		t.Errorf("argument order not preserved: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestLoadFiles_PropagatesErrors(t *testing.T) {
	good := writeTemp(t, "a.csv", "ID,Entidad,Relación,Elemento Relacionado\n1,A,rel,B\n")

	if _, err := LoadFiles(context.Background(), DefaultOptions(), zerolog.Nop(), good, "/does/not/exist.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}
