package utils

import (
	"fmt"
	"strings"
	"time"

	"recruit-matcher/internal/models"
)

const maxNotesLen = 300

// FormatSuggestion renders one on-demand result. Exactly one of the
// suggestion's Candidate or Opportunity is set.
func FormatSuggestion(i int, s models.Suggestion) string {
	var sb strings.Builder

	switch {
	case s.Opportunity != nil:
		o := s.Opportunity
		sb.WriteString(fmt.Sprintf("*%d\\. %s* `%s`\n", i+1, EscapeMarkdown(orUntitled(o.Title)), EscapeCode(o.ID)))
		sb.WriteString(fmt.Sprintf("   📍 %s\n", EscapeMarkdown(formatPlace(o.Location, o.City))))
		if len(o.LevelsOffered) > 0 {
			sb.WriteString(fmt.Sprintf("   🏫 %s\n", EscapeMarkdown(o.LevelsOffered.String())))
		}
		if subjects := o.Subjects(); len(subjects) > 0 {
			sb.WriteString(fmt.Sprintf("   📚 %s\n", EscapeMarkdown(subjects.String())))
		}
	case s.Candidate != nil:
		c := s.Candidate
		sb.WriteString(fmt.Sprintf("*%d\\. %s* `%s`\n", i+1, EscapeMarkdown(orUntitled(c.FullName)), EscapeCode(c.ID)))
		if len(c.PreferredLocations) > 0 {
			sb.WriteString(fmt.Sprintf("   📍 %s\n", EscapeMarkdown(c.PreferredLocations.String())))
		}
		if c.PreferredLevel != "" {
			sb.WriteString(fmt.Sprintf("   🏫 %s\n", EscapeMarkdown(c.PreferredLevel)))
		}
		if c.SubjectSpecialty != "" {
			sb.WriteString(fmt.Sprintf("   📚 %s\n", EscapeMarkdown(c.SubjectSpecialty)))
		}
	}

	sb.WriteString(fmt.Sprintf("   ⭐ *%d*/100", s.Score))
	if len(s.Reasons) > 0 {
		sb.WriteString(" \\- " + EscapeMarkdown(strings.Join(s.Reasons, ", ")))
	}
	sb.WriteString("\n")

	return sb.String()
}

func FormatSuggestionList(title string, suggestions []models.Suggestion, limit int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔎 *%s*\n", EscapeMarkdown(title)))

	if len(suggestions) == 0 {
		sb.WriteString("\n_No active records to compare against_\n")
		return sb.String()
	}

	shown := suggestions
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	sb.WriteString(fmt.Sprintf("*Showing:* %d of %d\n\n", len(shown), len(suggestions)))

	for i, s := range shown {
		sb.WriteString(FormatSuggestion(i, s))
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatMatch renders a persisted match. Missing sides are shown by id.
func FormatMatch(m *models.Match) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*Match \\#%d* %s %s\n", m.ID, StatusEmoji(m.Status), EscapeMarkdown(string(m.Status))))

	candidate := m.CandidateID
	if m.Candidate != nil && m.Candidate.FullName != "" {
		candidate = m.Candidate.FullName + " (" + m.CandidateID + ")"
	} else if m.Candidate == nil {
		candidate += " (record unavailable)"
	}
	sb.WriteString(fmt.Sprintf("👤 %s\n", EscapeMarkdown(candidate)))

	opportunity := m.OpportunityID
	if m.Opportunity != nil {
		label := orUntitled(m.Opportunity.Title)
		place := formatPlace(m.Opportunity.Location, m.Opportunity.City)
		opportunity = fmt.Sprintf("%s, %s (%s)", label, place, m.OpportunityID)
	} else {
		opportunity += " (record unavailable)"
	}
	sb.WriteString(fmt.Sprintf("🏫 %s\n", EscapeMarkdown(opportunity)))

	sb.WriteString(fmt.Sprintf("⭐ *%d*/100\n", m.Score))
	if len(m.Reasons) > 0 {
		sb.WriteString(fmt.Sprintf("💡 %s\n", EscapeMarkdown(strings.Join(m.Reasons, ", "))))
	}
	if m.Notes != nil && *m.Notes != "" {
		sb.WriteString(fmt.Sprintf("📝 %s\n", EscapeMarkdown(TruncateString(*m.Notes, maxNotesLen))))
	}
	sb.WriteString(fmt.Sprintf("🕒 %s\n", EscapeMarkdown(m.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"))))

	return sb.String()
}

func FormatSummary(s *models.ReconcileSummary) string {
	if s == nil {
		return "ℹ️ No reconciliation has been recorded yet"
	}

	var sb strings.Builder

	header := "✅ *Reconciliation finished*"
	if s.Cancelled {
		header = "⚠️ *Reconciliation cancelled*"
	} else if s.Failures > 0 {
		header = "⚠️ *Reconciliation finished with failures*"
	}
	sb.WriteString(header + "\n\n")

	sb.WriteString(fmt.Sprintf("*Run:* `%s`\n", EscapeCode(s.RunID)))
	sb.WriteString(fmt.Sprintf("*Direction:* %s\n", EscapeMarkdown(s.Direction)))
	sb.WriteString(fmt.Sprintf("*Threshold:* %d\n", s.Threshold))
	sb.WriteString(fmt.Sprintf("*Matches written:* %d\n", s.MatchesCreatedOrUpdated))
	sb.WriteString(fmt.Sprintf("*Candidates:* %d\n", s.CandidatesProcessed))
	sb.WriteString(fmt.Sprintf("*Opportunities:* %d\n", s.OpportunitiesProcessed))
	sb.WriteString(fmt.Sprintf("*Pairs:* %d\n", s.PairsAttempted))
	sb.WriteString(fmt.Sprintf("*Failures:* %d\n", s.Failures))
	sb.WriteString(fmt.Sprintf("*Started:* %s\n", EscapeMarkdown(s.StartedAt.UTC().Format(time.RFC3339))))
	sb.WriteString(fmt.Sprintf("*Duration:* %s\n", EscapeMarkdown(s.Duration.Round(time.Millisecond).String())))

	return sb.String()
}

func StatusEmoji(s models.MatchStatus) string {
	switch s {
	case models.MatchStatusPending:
		return "🕓"
	case models.MatchStatusContacted:
		return "📞"
	case models.MatchStatusInterviewed:
		return "🗣"
	case models.MatchStatusPlaced:
		return "🎉"
	case models.MatchStatusRejected:
		return "❌"
	default:
		return "❔"
	}
}

func FormatWelcomeMessage(firstName string) string {
	name := firstName
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(`👋 Hi, *%s*\!

I help reviewers work through candidate and school matches\.

*Commands:*
/candidate `+"`id`"+` \- best opportunities for a candidate
/opportunity `+"`id`"+` \- best candidates for an opportunity
/matches \- stored matches
/setstatus \- move a match along
/reconcile \- recompute all matches
/lastrun \- last reconciliation summary
/help \- help`, EscapeMarkdown(name))
}

func FormatHelpMessage() string {
	return `*📖 Help*

/candidate ` + "`id`" + ` \- score a candidate against every active opportunity
/opportunity ` + "`id`" + ` \- score an opportunity against every active candidate
/matches ` + "`[status] [min score]`" + ` \- list stored matches, best first
/setstatus ` + "`match id` `status` `[notes]`" + ` \- update a match
/reconcile \- recompute and store matches above the threshold
/lastrun \- show the last reconciliation summary

*Statuses:* pending, contacted, interviewed, placed, rejected

Suggestions are not stored\. Only /reconcile writes matches\.`
}

func FormatNotFound(kind, id string) string {
	return fmt.Sprintf("🤷 No %s with id `%s`", EscapeMarkdown(kind), EscapeCode(id))
}

func formatPlace(location, city string) string {
	switch {
	case location != "" && city != "" && !strings.EqualFold(location, city):
		return city + ", " + location
	case city != "":
		return city
	case location != "":
		return location
	default:
		return "location not set"
	}
}

func orUntitled(s string) string {
	if strings.TrimSpace(s) == "" {
		return "untitled"
	}
	return s
}

// EscapeMarkdown escapes special characters for Telegram MarkdownV2
func EscapeMarkdown(text string) string {
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)

	return replacer.Replace(text)
}

// EscapeCode escapes text placed inside a MarkdownV2 code span.
func EscapeCode(text string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(text)
}

func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
