package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/mcdev12/tierdraft/go/internal/draft/turn"
	"github.com/mcdev12/tierdraft/go/internal/models"
)

func coachRef(team *models.Team) string {
	if team.Coach.ID != "" {
		return "<@" + team.Coach.ID + ">"
	}
	return team.Name
}

func pickMessage(team *models.Team, pick models.Pick, auto bool) string {
	item := pick.ItemID
	if len(pick.Addons) > 0 {
		item += " (" + strings.Join(pick.Addons, ", ") + ")"
	}
	if auto {
		return fmt.Sprintf("%s auto-drafted %s from their queue", team.Name, item)
	}
	return fmt.Sprintf("%s drafted %s", team.Name, item)
}

func yourTurnMessage(s *scope, team *models.Team) string {
	pos := turn.CurrentPick(s.div.DraftCounter, len(s.order))
	msg := fmt.Sprintf("%s it's your turn to draft (round %d, pick %d)", coachRef(team), pos.Round+1, pos.Position+1)
	if s.div.SkipTime != nil {
		msg += fmt.Sprintf(". You have until %s", s.div.SkipTime.UTC().Format(time.RFC1123))
	}
	return msg
}

func skippedMessage(team *models.Team, timer time.Duration) string {
	return fmt.Sprintf("%s was skipped. Their timer is now %s", team.Name, timer)
}

func reminderMessage(team *models.Team, left time.Duration) string {
	return fmt.Sprintf("%s you have %s left to make your pick", coachRef(team), left)
}

func completedMessage(div *models.Division) string {
	return fmt.Sprintf("The draft for %s is complete", div.Name)
}

func pausedMessage(div *models.Division) string {
	return fmt.Sprintf("The draft for %s has been paused", div.Name)
}

func tradeMessage(team1, team2 *models.Team, items1, items2 []string) string {
	name := func(t *models.Team) string {
		if t == nil {
			return "free agency"
		}
		return t.Name
	}
	return fmt.Sprintf("Trade: %s sends %s to %s for %s",
		name(team1), strings.Join(items1, ", "), name(team2), strings.Join(items2, ", "))
}
