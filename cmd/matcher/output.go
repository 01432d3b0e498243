package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"recruit-matcher/internal/models"
)

func writeJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeMatches(w io.Writer, matches []models.Match) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tSTATUS\tCANDIDATE\tOPPORTUNITY\tREASONS")
	for _, m := range matches {
		candidate := m.CandidateID
		if m.Candidate != nil && m.Candidate.FullName != "" {
			candidate = fmt.Sprintf("%s (%s)", m.Candidate.FullName, m.CandidateID)
		}
		opportunity := m.OpportunityID
		if m.Opportunity != nil && m.Opportunity.Title != "" {
			opportunity = fmt.Sprintf("%s (%s)", m.Opportunity.Title, m.OpportunityID)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			m.ID, m.Score, m.Status, candidate, opportunity, strings.Join(m.Reasons, "; "))
	}
	return tw.Flush()
}

func writeSuggestions(w io.Writer, suggestions []models.Suggestion) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tNAME\tREASONS")
	for _, s := range suggestions {
		var id, name string
		switch {
		case s.Opportunity != nil:
			id, name = s.Opportunity.ID, s.Opportunity.Title
		case s.Candidate != nil:
			id, name = s.Candidate.ID, s.Candidate.FullName
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Score, id, name, strings.Join(s.Reasons, "; "))
	}
	return tw.Flush()
}
