package utils

import (
	"strconv"

	"recruit-matcher/internal/models"

	tele "gopkg.in/telebot.v3"
)

// Callback actions. Data is "<action>:<arg>:<arg>".
const (
	ActionStatus       = "status"
	ActionReconcileYes = "reconcile_yes"
	ActionReconcileNo  = "reconcile_no"
)

func MainMenuKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	btnMatches := menu.Text("/matches")
	btnPending := menu.Text("/matches pending")
	btnLastRun := menu.Text("/lastrun")
	btnHelp := menu.Text("/help")

	menu.Reply(
		menu.Row(btnMatches, btnPending),
		menu.Row(btnLastRun, btnHelp),
	)

	return menu
}

// MatchStatusKeyboard offers every status except the current one, the usual
// next steps first.
func MatchStatusKeyboard(matchID int64, current models.MatchStatus) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}

	id := strconv.FormatInt(matchID, 10)

	var forward, other []tele.Btn
	for _, st := range models.MatchStatuses() {
		if st == current {
			continue
		}
		btn := tele.Btn{Text: StatusEmoji(st) + " " + string(st), Data: ActionStatus + ":" + id + ":" + string(st)}
		if models.IsForwardTransition(current, st) {
			forward = append(forward, btn)
		} else {
			other = append(other, btn)
		}
	}
	buttons := append(forward, other...)

	// two per row
	var rows []tele.Row
	for i := 0; i < len(buttons); i += 2 {
		end := i + 2
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, menu.Row(buttons[i:end]...))
	}

	menu.Inline(rows...)
	return menu
}

func ConfirmReconcileKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}

	btnYes := tele.Btn{Text: "✅ Run now", Data: ActionReconcileYes}
	btnNo := tele.Btn{Text: "❌ Cancel", Data: ActionReconcileNo}

	menu.Inline(menu.Row(btnYes, btnNo))

	return menu
}
