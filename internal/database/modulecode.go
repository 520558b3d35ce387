package database

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var moduleNumberRe = regexp.MustCompile(`(?i)m[óo]?dulo?[_\s-]*(\d+)`)

// keywordCodes maps recognizable course-unit names to fixed short codes.
// Longer keywords come first so "autoevaluacion" is not swallowed by
// "evaluacion".
var keywordCodes = []struct {
	keyword string
	code    string
}{
	{"autoevaluacion", "AUTO"},
	{"correcciones", "CORR"},
	{"evaluacion", "EVAL"},
	{"dibujos", "DRAW"},
	{"examen", "EXAM"},
	{"tarea", "TASK"},
	{"lives", "LIVE"},
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ñ", "n",
)

// GenerateModuleCode derives a short stable code from a module name.
// Numbered modules become MODnn, known unit names get a fixed code, and
// anything else falls back to its first four alphanumeric characters.
func GenerateModuleCode(name string) string {
	if m := moduleNumberRe.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return fmt.Sprintf("MOD%02d", n)
		}
	}

	folded := accentFolder.Replace(strings.ToLower(name))
	for _, kc := range keywordCodes {
		if strings.Contains(folded, kc.keyword) {
			return kc.code
		}
	}

	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "MOD0"
	}
	return strings.ToUpper(b.String())
}
