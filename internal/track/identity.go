package track

import (
	"regexp"
	"strings"
)

// PlaceholderDomain is appended to emails synthesized from a filename-only
// match. Addresses under this domain are not real mailboxes; downstream
// consumers use IsPlaceholderEmail to tell them apart.
const PlaceholderDomain = "extracted.temp"

// Identity is a resolved (name, email) pair for an uploaded file.
type Identity struct {
	Name  string
	Email string
}

// Strategy is one rule of the resolution cascade. Fn returns the identity
// and true on a match; the cascade stops at the first match.
type Strategy struct {
	Name string
	Fn   func(File) (Identity, bool)
}

// Resolver attributes a remote file to a student identity using an ordered
// cascade of strategies. Remote metadata is authoritative and always wins
// over filename parsing; filename parsing exists for files uploaded without
// traceable metadata.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a Resolver with the standard strategy order:
// last modifying user, first owner, email embedded in the filename, and
// finally name patterns in the filename with a synthesized placeholder email.
func NewResolver() *Resolver {
	return &Resolver{
		strategies: []Strategy{
			{Name: "last_modifying_user", Fn: fromLastModifyingUser},
			{Name: "owner", Fn: fromOwner},
			{Name: "email_in_filename", Fn: fromEmailInFilename},
			{Name: "name_in_filename", Fn: fromNameInFilename},
		},
	}
}

// Resolve runs the cascade and returns the first match. The second return
// is false when no strategy identified the file; callers skip the file and
// count it rather than failing the run.
func (r *Resolver) Resolve(f File) (Identity, bool) {
	for _, s := range r.strategies {
		if id, ok := s.Fn(f); ok {
			return id, true
		}
	}
	return Identity{}, false
}

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

func validEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

// identityFromUser builds an identity from a metadata user, preferring a
// name extracted from the filename when it is long enough to be a real name.
func identityFromUser(u UserRef, filename string) (Identity, bool) {
	if !validEmail(u.EmailAddress) {
		return Identity{}, false
	}

	name := ExtractNameFromFilename(filename)
	if len(name) <= 3 {
		name = u.DisplayName
		if name == "" {
			name = localPart(u.EmailAddress)
		}
	}
	return Identity{Name: name, Email: u.EmailAddress}, true
}

func fromLastModifyingUser(f File) (Identity, bool) {
	if f.LastModifyingUser == nil {
		return Identity{}, false
	}
	return identityFromUser(*f.LastModifyingUser, f.Name)
}

func fromOwner(f File) (Identity, bool) {
	if len(f.Owners) == 0 {
		return Identity{}, false
	}
	return identityFromUser(f.Owners[0], f.Name)
}

func fromEmailInFilename(f File) (Identity, bool) {
	email := emailRe.FindString(f.Name)
	if email == "" {
		return Identity{}, false
	}
	return Identity{Name: localPart(email), Email: email}, true
}

func fromNameInFilename(f File) (Identity, bool) {
	name := ExtractNameFromFilename(f.Name)
	if name == "" {
		return Identity{}, false
	}
	return Identity{Name: name, Email: PlaceholderEmail(name)}, true
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// Filename pattern families, most specific first. All support the
// accented-Latin range so names like "Muñoz" or "HernándezPérez" survive.
var namePatterns = []*regexp.Regexp{
	// Modulo7_EduardoMoreno_01.jpg / Módulo3_NombreApellido_01.jpg
	regexp.MustCompile(`(?i)m[óo]?dulo?[_\s-]*\d+[_\s-]+([A-Za-zÀ-ÿ]{3,}[A-Za-zÀ-ÿ\s]*?)(?:[_\s-]+\d+)?\.?[a-zA-Z]*$`),
	// Modulo9_Luis_Francisco_Escoto_01.jpg: underscore-joined tokens, up to four
	regexp.MustCompile(`(?i)m[óo]?dulo?[_\s-]*\d+[_\s-]+([A-Za-zÀ-ÿ]+(?:[_\s][A-Za-zÀ-ÿ]+){1,3})(?:[_\s-]+\d+)?`),
	// Modulo 3_Nombre Apellido_01.png
	regexp.MustCompile(`(?i)m[óo]?dulo?[_\s-]*\d+[_\s-]+([A-Za-zÀ-ÿ\s]{4,}?)(?:[_\s-]+\d+)?\.?[a-zA-Z]*$`),
	// Leading Name_Surname or Name-Surname
	regexp.MustCompile(`^([A-Za-zÀ-ÿ]+[_\s-]+[A-Za-zÀ-ÿ]+)`),
	// Leading name before a separator
	regexp.MustCompile(`^([A-Za-zÀ-ÿ\s]{3,}?)[-_.]`),
	// Bare leading name token before a digit
	regexp.MustCompile(`([A-Za-zÀ-ÿ\s]{3,}?)\d`),
}

var (
	camelBoundaryRe  = regexp.MustCompile(`([a-zà-ÿ])([A-ZÀ-Þ])`)
	modulePrefixRe   = regexp.MustCompile(`(?i)^m[óo]?dulo?[_\s-]*\d+[_\s-]*`)
	trailingDigitsRe = regexp.MustCompile(`[_\s-]*\d+[_\s-]*$`)
)

// Module-numbering tokens are easily misparsed as name tokens by the more
// permissive patterns; any candidate containing one is rejected outright.
var nameStoplist = []string{"modulo", "módulo", "dulo", "ejercicio", "tarea", "test"}

// ExtractNameFromFilename attempts to pull a student name out of a filename
// such as "Modulo7_EduardoMoreno_01.jpg". Pattern families are tried in
// order, most specific first; the first candidate that survives cleanup and
// the stoplist wins. Returns "" when nothing usable is found.
func ExtractNameFromFilename(filename string) string {
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		if name := cleanNameCandidate(m[1]); name != "" {
			return name
		}
	}
	return ""
}

func cleanNameCandidate(candidate string) string {
	name := strings.NewReplacer("_", " ", "-", " ").Replace(candidate)
	name = camelBoundaryRe.ReplaceAllString(name, "$1 $2")
	name = modulePrefixRe.ReplaceAllString(name, "")
	name = trailingDigitsRe.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")

	if len(name) <= 2 {
		return ""
	}
	lower := strings.ToLower(name)
	for _, word := range nameStoplist {
		if lower == word || strings.Contains(lower, word) {
			return ""
		}
	}
	return capitalizeWords(name)
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
)

// PlaceholderEmail synthesizes a recognizable non-authoritative address for
// a name-only resolution: "Eduardo Moreno" -> "eduardo.moreno@extracted.temp".
func PlaceholderEmail(name string) string {
	local := strings.ToLower(name)
	local = strings.ReplaceAll(local, " ", ".")
	local = accentReplacer.Replace(local)
	return local + "@" + PlaceholderDomain
}

// IsPlaceholderEmail reports whether email was synthesized by
// PlaceholderEmail rather than observed in remote metadata.
func IsPlaceholderEmail(email string) bool {
	return strings.HasSuffix(email, "@"+PlaceholderDomain)
}
