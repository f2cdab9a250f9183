package ingest

import (
	"regexp"
	"strings"

	"github.com/dmarchante/relvet/internal/model"
)

// Extra field keys carried by the extended 7-field line format.
const (
	fieldCode1 = "code1"
	fieldCode2 = "code2"
	fieldScore = "score"
)

// The relationship dumps come in three line formats:
//
//  1. Extended with nested parentheses:
//     235571: (16172 (ICD-11 : BlockL1-7A2( Hypersomnolence disorders)), The prevalence..., 641 (Población general)) 0.000500,
//
//  2. Extended standard:
//     167: (11 (Alergia alimentaria), Disease is in the domain of Specialty, 98 (Alergología)) 1.000000,
//
//  3. Original 4-field:
//     44310: (Tumores neuroendocrinos..., Group can be observed in Anatomy, Páncreas)
var (
	entryNestedOuter = regexp.MustCompile(`^(\d+):\s*\((.*)\)\s*([\d.]+),?$`)
	entryNestedCode1 = regexp.MustCompile(`^\s*(\d+)\s*\(([^)]+(?:\([^)]*\)[^)]*)*)\)\s*,`)
	entryNestedTail  = regexp.MustCompile(`^([^,]+)\s*,\s*(\d+)\s*\(([^)]+(?:\([^)]*\)[^)]*)*)\)\s*$`)

	entryExtended = regexp.MustCompile(`^(\d+):\s*\(\s*(\d+)\s*\(([^)]+)\)\s*,\s*([^,]+)\s*,\s*(\d+)\s*\(([^)]+)\)\s*\)\s*([\d.]+),?$`)

	entryOriginal = regexp.MustCompile(`(?s)^(\d+):\s*\((.*)\)$`)
)

// parseEntry parses one packed relationship entry. It tries the three
// known formats from most to least specific and reports false when
// none matches.
func parseEntry(entry string) (model.Record, bool) {
	if rec, ok := parseNested(entry); ok {
		return rec, true
	}

	if m := entryExtended.FindStringSubmatch(entry); m != nil {
		return extendedRecord(m[1], m[2], m[3], m[4], m[5], m[6], m[7]), true
	}

	if m := entryOriginal.FindStringSubmatch(entry); m != nil {
		parts := strings.SplitN(m[2], ",", 3)
		if len(parts) < 3 {
			return model.Record{}, false
		}
		return model.Record{
			ID: m[1],
			Fields: map[string]string{
				model.FieldEntity:   strings.TrimSpace(parts[0]),
				model.FieldRelation: strings.TrimSpace(parts[1]),
				model.FieldRelated:  strings.TrimSpace(parts[2]),
			},
		}, true
	}

	return model.Record{}, false
}

// parseNested handles the extended format where concept names may
// themselves contain parenthesized text.
func parseNested(entry string) (model.Record, bool) {
	outer := entryNestedOuter.FindStringSubmatch(entry)
	if outer == nil {
		return model.Record{}, false
	}
	id, inner, score := outer[1], outer[2], outer[3]

	code1 := entryNestedCode1.FindStringSubmatchIndex(inner)
	if code1 == nil {
		return model.Record{}, false
	}
	code1Val := inner[code1[2]:code1[3]]
	entity := strings.TrimSpace(inner[code1[4]:code1[5]])

	rest := strings.TrimSpace(inner[code1[1]:])
	tail := entryNestedTail.FindStringSubmatch(rest)
	if tail == nil {
		return model.Record{}, false
	}

	rec := extendedRecord(id, code1Val, entity, strings.TrimSpace(tail[1]), tail[2], strings.TrimSpace(tail[3]), score)
	return rec, true
}

func extendedRecord(id, code1, entity, relation, code2, related, score string) model.Record {
	return model.Record{
		ID: id,
		Fields: map[string]string{
			model.FieldEntity:   strings.TrimSpace(entity),
			model.FieldRelation: strings.TrimSpace(relation),
			model.FieldRelated:  strings.TrimSpace(related),
			fieldCode1:          code1,
			fieldCode2:          code2,
			fieldScore:          score,
		},
	}
}
