package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"recruit-matcher/internal/models"
)

const (
	defaultMatchesShown = 10
	maxMatchesShown     = 50
	suggestionsShown    = 10
)

var errUsage = errors.New("usage")

// parseID takes the single id argument of /candidate and /opportunity.
func parseID(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errUsage
	}
	return strings.TrimSpace(args[0]), nil
}

// parseMatchesArgs understands, in any order: a status name, a bare number
// as the minimum score, limit=N, candidate=ID and opportunity=ID.
func parseMatchesArgs(args []string) (models.MatchFilter, error) {
	filter := models.MatchFilter{Limit: defaultMatchesShown}

	for _, arg := range args {
		key, value, hasValue := strings.Cut(arg, "=")
		if hasValue {
			switch strings.ToLower(key) {
			case "candidate":
				filter.CandidateID = value
			case "opportunity":
				filter.OpportunityID = value
			case "limit":
				n, err := strconv.Atoi(value)
				if err != nil || n < 1 {
					return filter, fmt.Errorf("limit must be a positive number, got %q", value)
				}
				if n > maxMatchesShown {
					n = maxMatchesShown
				}
				filter.Limit = n
			default:
				return filter, fmt.Errorf("unknown option %q", key)
			}
			continue
		}

		if n, err := strconv.Atoi(arg); err == nil {
			if n < 0 || n > 100 {
				return filter, fmt.Errorf("minimum score must be between 0 and 100, got %d", n)
			}
			filter.MinScore = n
			continue
		}

		st, err := models.ParseMatchStatus(arg)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}

	return filter, nil
}

// parseSetStatusArgs reads "<match id> <status> [notes...]".
func parseSetStatusArgs(args []string) (int64, string, *string, error) {
	if len(args) < 2 {
		return 0, "", nil, errUsage
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, "", nil, fmt.Errorf("match id must be a positive number, got %q", args[0])
	}

	var notes *string
	if len(args) > 2 {
		n := strings.Join(args[2:], " ")
		notes = &n
	}

	return id, args[1], notes, nil
}

// parseCallback strips telebot's \f prefix and splits "<action>:<arg>:...".
func parseCallback(data string) (string, []string) {
	data = strings.TrimPrefix(data, "\f")
	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}
