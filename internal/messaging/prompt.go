// Package messaging builds the prompts sent to the language model for
// LinkedIn connection notes and cleans up whatever comes back.
package messaging

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/justsurfingit/linkedin-agent/internal/seniority"
	"github.com/justsurfingit/linkedin-agent/internal/textnorm"
)

// MaxLength is LinkedIn's hard cap on a connection note.
const MaxLength = 300

// PromptLength is what the model is asked to stay under, leaving headroom
// below MaxLength.
const PromptLength = 280

// Sender is the person the note is written for.
type Sender struct {
	Name            string
	Title           string
	Company         string
	School          string
	Major           string
	Email           string
	ExperienceLevel string
	Skills          string
	Purpose         string
}

// Target is the recipient of the note.
type Target struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// FirstName returns the first word of the target name, or "there".
func (t Target) FirstName() string {
	return firstWord(t.Name, "there")
}

// Include gates which sender facts the note may mention.
type Include struct {
	Title   bool
	Company bool
	School  bool
	Major   bool
	Email   bool
}

// DefaultInclude mirrors the extension defaults: title and school on,
// everything else off.
func DefaultInclude() Include {
	return Include{Title: true, School: true}
}

type Tone string

const (
	Professional Tone = "professional"
	Friendly     Tone = "friendly"
	Casual       Tone = "casual"
)

// ParseTone maps unknown or empty values to Professional.
func ParseTone(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case Friendly:
		return Friendly
	case Casual:
		return Casual
	default:
		return Professional
	}
}

// Abbreviates reports whether school and major names are shortened.
func (t Tone) Abbreviates() bool {
	return t == Casual
}

// Rand is the source of surface variation between calls. *rand.Rand
// satisfies it.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

func orDefault(rnd Rand) Rand {
	if rnd == nil {
		return defaultRand{}
	}
	return rnd
}

type toneTemplate struct {
	style    string
	upward   string
	level    string
	downward string
}

var toneTemplates = map[Tone]toneTemplate{
	Professional: {
		style:    "professional but warm",
		upward:   "Keep the register formal and respectful of their experience.",
		level:    "Keep it collegial and direct.",
		downward: "Keep it encouraging without sounding like a mentor lecturing.",
	},
	Friendly: {
		style:    "friendly and enthusiastic",
		upward:   "Be warm and appreciative but not gushing.",
		level:    "Be upbeat, like reaching out to someone you'd enjoy working with.",
		downward: "Be warm and welcoming.",
	},
	Casual: {
		style:    "casual and genuine",
		upward:   "Relaxed wording is fine but stay respectful, no slang.",
		level:    "Write like a quick note to a colleague; short forms like CS or MIT are fine.",
		downward: "Keep it light and approachable.",
	},
}

var relationshipRules = map[seniority.Relationship]string{
	seniority.MuchSenior: "The recipient is far more senior than the sender. Express interest in learning from their path. NEVER call them \"fellow\" anything and never imply equal standing.",
	seniority.MoreSenior: "The recipient is more senior than the sender. Acknowledge their experience. Do not call them \"fellow\".",
	seniority.Peer:       "The recipient is at a similar level. Calling them a \"fellow\" practitioner of the same role is acceptable.",
	seniority.MoreJunior: "The recipient is earlier in their career than the sender. Do not call them \"fellow\" and do not sound condescending.",
	seniority.MuchJunior: "The recipient is much earlier in their career. Offer to be a resource. Do not call them \"fellow\" and do not sound condescending.",
}

// BannedPhrases are clichés the model must not use.
var BannedPhrases = []string{
	"loved your recent post",
	"came across your profile",
	"would love to connect",
	"great to connect",
	"expand our networks",
	"I hope this message finds you well",
	"pick your brain",
}

var approaches = []string{
	"Focus on their role and express genuine interest in their work",
	"Mention that you work in a related field and want to learn from others in it",
	"Point to a specific skill or expertise their role implies",
	"Express interest in their career journey",
	"Note something notable about their company or team",
	"Express enthusiasm about connecting with someone in their field",
}

// BuildPrompt returns the system instruction and the user prompt for one
// target. Output depends only on its inputs and the values drawn from rnd.
func BuildPrompt(s Sender, t Target, tone Tone, inc Include, rnd Rand) (system, prompt string) {
	rnd = orDefault(rnd)
	rel := seniority.Relate(seniority.DetectUser(s.ExperienceLevel, s.Title), seniority.Detect(t.Title))
	return systemPrompt(tone, rel), userPrompt(s, t, tone, inc, rel, rnd)
}

func systemPrompt(tone Tone, rel seniority.Relationship) string {
	tpl, ok := toneTemplates[tone]
	if !ok {
		tpl = toneTemplates[Professional]
	}

	var b strings.Builder
	b.WriteString("You write short, unique LinkedIn connection notes.\n\n")
	b.WriteString("HARD RULES:\n")
	fmt.Fprintf(&b, "1. Stay under %d characters.\n", PromptLength)
	b.WriteString("2. Do not open with a greeting such as \"Hi\" or \"Hello\"; the greeting is added separately.\n")
	b.WriteString("3. No sign-off or signature (no \"Best regards\", no name at the end).\n")
	b.WriteString("4. Do not ask questions. End with a statement.\n")
	b.WriteString("5. Never use these phrases:\n")
	for _, p := range BannedPhrases {
		fmt.Fprintf(&b, "   - %q\n", p)
	}
	b.WriteString("6. Write only the message text, with no quotes and no commentary.\n\n")

	fmt.Fprintf(&b, "TONE: %s.\n", tpl.style)
	b.WriteString("RELATIONSHIP: ")
	b.WriteString(relationshipRules[rel])
	b.WriteString(" ")
	switch rel {
	case seniority.MuchSenior, seniority.MoreSenior:
		b.WriteString(tpl.upward)
	case seniority.Peer:
		b.WriteString(tpl.level)
	default:
		b.WriteString(tpl.downward)
	}
	b.WriteString("\n")
	return b.String()
}

func userPrompt(s Sender, t Target, tone Tone, inc Include, rel seniority.Relationship, rnd Rand) string {
	abbreviate := tone.Abbreviates()

	var b strings.Builder
	fmt.Fprintf(&b, "Write a LinkedIn connection note (under %d characters).\n\n", PromptLength)

	b.WriteString("SENDER: " + firstWord(s.Name, "the sender") + "\n")
	if inc.Title && s.Title != "" {
		b.WriteString("- Current role: " + s.Title + "\n")
	}
	if inc.Company && s.Company != "" {
		b.WriteString("- Company: " + s.Company + "\n")
	}
	if inc.School && s.School != "" {
		b.WriteString("- School: " + textnorm.Abbreviate(s.School, textnorm.SchoolAbbreviations, abbreviate) + "\n")
	}
	if inc.Major && s.Major != "" {
		b.WriteString("- Studied: " + textnorm.Abbreviate(s.Major, textnorm.MajorAbbreviations, abbreviate) + "\n")
	}
	if inc.Email && s.Email != "" {
		b.WriteString("- Mention this email so they can reach out: " + s.Email + "\n")
	}
	if s.Skills != "" {
		b.WriteString("- Skills: " + s.Skills + "\n")
	}

	b.WriteString("\nRECIPIENT: " + t.FirstName())
	if t.Title != "" {
		b.WriteString(", " + t.Title)
	}
	if t.Company != "" {
		b.WriteString(" at " + t.Company)
	}
	b.WriteString("\n")
	b.WriteString("RELATIONSHIP: " + string(rel) + "\n")

	if s.Purpose != "" {
		b.WriteString("CONNECTION GOAL: " + s.Purpose + "\n")
	}
	b.WriteString("APPROACH: " + approaches[rnd.IntN(len(approaches))] + "\n")
	fmt.Fprintf(&b, "VARIATION: %d\n\n", rnd.IntN(10000))
	b.WriteString("Only mention the sender facts listed above. Write the message:")
	return b.String()
}

func firstWord(s, fallback string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return fallback
}
