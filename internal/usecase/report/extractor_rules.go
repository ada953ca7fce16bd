package report

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

const (
	defaultSpeaker = "Speaker 1"
	maxKeyTopics   = 5
)

var (
	// a label at line start or after a sentence end, e.g. "Alice:" or "Speaker A:"
	speakerLabelRe = regexp.MustCompile(`(?m)(?:^|[.!?]["')]?\s+)\s*([A-Z][A-Za-z0-9.'-]*(?: [A-Z0-9][A-Za-z0-9.'-]*)?):\s+`)
	sentenceRe     = regexp.MustCompile(`[^.!?\n]+[.!?]*`)

	selfCommitRe    = regexp.MustCompile(`(?i)\b(?:I['’]ll|I will|I['’]m going to|I am going to|I can take|let me)\s+(.+)`)
	requestRe       = regexp.MustCompile(`^([A-Z][A-Za-z'-]+),?\s+(?:can|could|would|will) you\s+(.+)`)
	groupCommitRe   = regexp.MustCompile(`(?i)\bwe (?:need|have|should|must) to\s+(.+)`)
	explicitActRe   = regexp.MustCompile(`(?i)\b(?:action item|todo|to-do)\b\s*:?\s*(.+)`)
	decisionRe      = regexp.MustCompile(`(?i)\b(?:decided|agreed|let's|let us|we will|we'll|going with|approved)\b`)
	highPriorityRe  = regexp.MustCompile(`(?i)\b(?:urgent|urgently|asap|critical|immediately|top priority|high priority|blocker)\b`)
	lowPriorityRe   = regexp.MustCompile(`(?i)\b(?:when you can|eventually|no rush|low priority|nice to have|someday)\b`)
	isoDateRe       = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	writtenDateRe   = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}(?:st|nd|rd|th)?,? \d{4}\b`)
	wordRe          = regexp.MustCompile(`[A-Za-z][A-Za-z'-]+`)
	danglingTailRe  = regexp.MustCompile(`(?i)[\s,;]+(?:and|done|finished|completed|ready|due)?[\s,;]*$`)
	deadlinePhrase  = `(?:(?:next|this) )?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|week|month|quarter)` +
		`|tomorrow|today|tonight|eod|eow|end of (?:the )?(?:day|week|month|quarter|year)` +
		`|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]* \d{1,2}(?:st|nd|rd|th)?` +
		`|\d{1,2}(?:st|nd|rd|th)? (?:of )?(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*` +
		`|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}(?:/\d{2,4})?`
	deadlineRe = regexp.MustCompile(`(?i)\b(?:by|before|due|until)\s+(` + deadlinePhrase + `)\b`)
)

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "because": true, "been": true,
	"before": true, "being": true, "could": true, "does": true, "doing": true, "done": true,
	"each": true, "from": true, "have": true, "having": true, "here": true, "into": true,
	"just": true, "know": true, "let's": true, "like": true, "make": true, "more": true,
	"need": true, "next": true, "okay": true, "only": true, "other": true, "over": true,
	"really": true, "should": true, "some": true, "sure": true, "take": true, "than": true,
	"that": true, "that's": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "thing": true, "things": true, "think": true, "this": true,
	"those": true, "through": true, "today": true, "tomorrow": true, "very": true, "want": true,
	"week": true, "well": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "will": true, "with": true, "would": true, "yeah": true,
	"your": true, "i'll": true, "we'll": true, "you'll": true, "it's": true, "don't": true,
	"going": true, "good": true, "great": true, "right": true, "monday": true, "tuesday": true,
	"wednesday": true, "thursday": true, "friday": true, "saturday": true, "sunday": true,
	"everyone": true, "agreed": true, "decided": true, "can": true, "own": true,
}

type turn struct {
	speaker string
	text    string
	labeled bool
}

// RuleExtractor builds reports offline with deterministic heuristics
type RuleExtractor struct {
	now func() time.Time
}

// NewRuleExtractor creates a rule-based extractor. A nil clock means time.Now.
func NewRuleExtractor(now func() time.Time) *RuleExtractor {
	if now == nil {
		now = time.Now
	}
	return &RuleExtractor{now: now}
}

// Extract implements Extractor
func (e *RuleExtractor) Extract(ctx context.Context, req ExtractionRequest) (entities.MeetingReport, error) {
	if err := ctx.Err(); err != nil {
		return entities.MeetingReport{}, err
	}
	text := strings.TrimSpace(req.Transcript)
	if text == "" {
		return entities.MeetingReport{}, fmt.Errorf("transcript is empty")
	}

	turns := splitTurns(text)
	speakers := turnSpeakers(turns)

	var (
		items     []entities.ActionItem
		decisions []string
		seenTask  = map[string]bool{}
		seenDec   = map[string]bool{}
	)
	for _, t := range turns {
		for _, sentence := range sentenceRe.FindAllString(t.text, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			if item, ok := actionFromSentence(sentence, t.speaker); ok {
				key := strings.ToLower(item.Task)
				if !seenTask[key] {
					seenTask[key] = true
					items = append(items, item)
				}
			}
			if decisionRe.MatchString(sentence) {
				d := strings.TrimRight(sentence, " ")
				if !seenDec[strings.ToLower(d)] {
					seenDec[strings.ToLower(d)] = true
					decisions = append(decisions, d)
				}
			}
		}
	}

	topics := keyTopics(turns, speakers)

	report := entities.MeetingReport{
		MeetingTitle:  inferTitle(topics),
		Date:          e.inferDate(text),
		Attendees:     speakers,
		KeyTopics:     topics,
		ActionItems:   items,
		DecisionsMade: decisions,
	}
	report = applyHints(report, req.Hints)
	report.Summary = summarize(report)
	return report, nil
}

// splitTurns segments the transcript on speaker labels. Text before the
// first label, or a transcript without labels, belongs to defaultSpeaker.
func splitTurns(text string) []turn {
	matches := speakerLabelRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []turn{{speaker: defaultSpeaker, text: text}}
	}

	var turns []turn
	if lead := strings.TrimSpace(text[:matches[0][2]]); lead != "" {
		turns = append(turns, turn{speaker: defaultSpeaker, text: lead})
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][2]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if body == "" {
			continue
		}
		turns = append(turns, turn{speaker: text[m[2]:m[3]], text: body, labeled: true})
	}
	return turns
}

// turnSpeakers lists speakers in order of first turn. defaultSpeaker is
// included when unlabeled text was attributed to it, so every assignee the
// rules produce is also an attendee.
func turnSpeakers(turns []turn) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range turns {
		if !seen[t.speaker] {
			seen[t.speaker] = true
			out = append(out, t.speaker)
		}
	}
	return out
}

func actionFromSentence(sentence, speaker string) (entities.ActionItem, bool) {
	var (
		task     string
		assignee *string
	)
	switch {
	case requestRe.MatchString(sentence):
		m := requestRe.FindStringSubmatch(sentence)
		task, assignee = m[2], entities.StringPtr(m[1])
	case selfCommitRe.MatchString(sentence):
		task, assignee = selfCommitRe.FindStringSubmatch(sentence)[1], entities.StringPtr(speaker)
	case groupCommitRe.MatchString(sentence):
		task = groupCommitRe.FindStringSubmatch(sentence)[1]
	case explicitActRe.MatchString(sentence):
		task = explicitActRe.FindStringSubmatch(sentence)[1]
	default:
		return entities.ActionItem{}, false
	}

	var deadline *string
	if loc := deadlineRe.FindStringSubmatchIndex(task); loc != nil {
		deadline = entities.StringPtr(task[loc[2]:loc[3]])
		task = task[:loc[0]] + task[loc[1]:]
	}
	task = cleanTask(task)
	if task == "" {
		return entities.ActionItem{}, false
	}

	item := entities.NewActionItem(task)
	item.Assignee = assignee
	item.Deadline = deadline
	switch {
	case highPriorityRe.MatchString(sentence):
		item.Priority = entities.PriorityHigh
	case lowPriorityRe.MatchString(sentence):
		item.Priority = entities.PriorityLow
	}
	return item, true
}

func cleanTask(task string) string {
	task = strings.TrimSpace(task)
	task = strings.TrimRight(task, ".!?")
	for {
		trimmed := danglingTailRe.ReplaceAllString(task, "")
		if trimmed == task {
			break
		}
		task = trimmed
	}
	task = strings.Join(strings.Fields(task), " ")
	if task == "" {
		return ""
	}
	r := []rune(task)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// keyTopics returns the most frequent content words, most frequent first
func keyTopics(turns []turn, speakers []string) []string {
	names := map[string]bool{}
	for _, s := range speakers {
		for _, part := range strings.Fields(s) {
			names[strings.ToLower(part)] = true
		}
	}

	counts := map[string]int{}
	first := map[string]int{}
	pos := 0
	for _, t := range turns {
		for _, w := range wordRe.FindAllString(t.text, -1) {
			w = strings.ToLower(strings.Trim(w, "'-"))
			if len(w) < 4 || stopwords[w] || names[w] {
				continue
			}
			if _, ok := first[w]; !ok {
				first[w] = pos
			}
			counts[w]++
			pos++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return first[words[i]] < first[words[j]]
	})
	if len(words) > maxKeyTopics {
		words = words[:maxKeyTopics]
	}
	return words
}

func inferTitle(topics []string) string {
	switch len(topics) {
	case 0:
		return "Meeting"
	case 1:
		return "Meeting on " + topics[0]
	default:
		return "Meeting on " + topics[0] + " and " + topics[1]
	}
}

func (e *RuleExtractor) inferDate(text string) string {
	if d := isoDateRe.FindString(text); d != "" {
		return d
	}
	if d := writtenDateRe.FindString(text); d != "" {
		return d
	}
	return e.now().Format("2006-01-02")
}

func summarize(r entities.MeetingReport) string {
	who := "The participants"
	if len(r.Attendees) > 0 {
		who = strings.Join(r.Attendees, ", ")
	}
	what := "the agenda"
	if len(r.KeyTopics) > 0 {
		what = strings.Join(r.KeyTopics, ", ")
	}
	return fmt.Sprintf("%s met for %q and discussed %s. %d action item(s) and %d decision(s) were recorded.",
		who, r.MeetingTitle, what, len(r.ActionItems), len(r.DecisionsMade))
}
