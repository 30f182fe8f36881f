package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
	"github.com/dojo-hub/dojo-community-hub/pkg/timeutil"
)

// Message builders. All student-facing text is Portuguese, the language
// of the academy. Builders are pure and never fail: callers validate
// their inputs before building.

// ScheduleChanged builds the broadcast for an added, updated or removed
// class in a city's schedule.
func ScheduleChanged(cityID shared.CityID, action, classType, when string) Message {
	var body string
	switch action {
	case "added":
		body = fmt.Sprintf("Nova aula de %s: %s.", classType, when)
	case "updated":
		body = fmt.Sprintf("Aula de %s alterada: novo horário %s.", classType, when)
	case "removed":
		body = fmt.Sprintf("Aula de %s (%s) foi removida da grade.", classType, when)
	default:
		body = fmt.Sprintf("A grade de aulas mudou: %s, %s.", classType, when)
	}
	return Message{
		Kind:      KindScheduleChange,
		CityID:    cityID,
		Title:     "📅 Grade de aulas atualizada",
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// DayCancelled builds the broadcast for a cancelled training day.
func DayCancelled(cityID shared.CityID, date shared.ISODate, reason string) Message {
	body := fmt.Sprintf("As aulas de %s foram canceladas.", date)
	if strings.TrimSpace(reason) != "" {
		body = fmt.Sprintf("As aulas de %s foram canceladas: %s.", date, strings.TrimSpace(reason))
	}
	return Message{
		Kind:      KindDayCancelled,
		CityID:    cityID,
		Title:     "🚫 Treino cancelado",
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// DayRestored builds the broadcast announcing a cancellation was lifted.
func DayRestored(cityID shared.CityID, date shared.ISODate) Message {
	return Message{
		Kind:      KindDayCancelled,
		CityID:    cityID,
		Title:     "✅ Treino confirmado",
		Body:      fmt.Sprintf("As aulas de %s estão confirmadas novamente.", date),
		CreatedAt: time.Now().UTC(),
	}
}

// AchievementUnlocked builds the direct message celebrating a milestone.
func AchievementUnlocked(cityID shared.CityID, studentID shared.StudentID, title string) Message {
	return Message{
		Kind:      KindAchievement,
		CityID:    cityID,
		StudentID: studentID,
		Title:     "🏅 Nova conquista",
		Body:      fmt.Sprintf("Parabéns! Você desbloqueou: %s.", title),
		CreatedAt: time.Now().UTC(),
	}
}

// BeltPromoted builds the direct message celebrating a promotion.
func BeltPromoted(cityID shared.CityID, studentID shared.StudentID, newBelt string) Message {
	return Message{
		Kind:      KindBeltPromotion,
		CityID:    cityID,
		StudentID: studentID,
		Title:     "🥋 Graduação",
		Body:      fmt.Sprintf("Parabéns pela graduação! Sua nova faixa: %s.", newBelt),
		CreatedAt: time.Now().UTC(),
	}
}

// DailyDigest builds the morning broadcast with the city's resolved
// classes for the day. An empty occurrence list means a rest day.
func DailyDigest(cityID shared.CityID, date shared.ISODate, occurrences []schedule.Occurrence) Message {
	var b strings.Builder
	if len(occurrences) == 0 {
		fmt.Fprintf(&b, "Hoje (%s) não há aulas. Bom descanso!", date)
	} else {
		fmt.Fprintf(&b, "Aulas de hoje (%s):\n", date)
		for _, occ := range occurrences {
			fmt.Fprintf(&b, "• %s (%s)\n", timeutil.FormatRange(occ.StartTime.Int(), occ.Duration), occ.ClassType)
		}
		b.WriteString("Bons treinos! 🥋")
	}
	return Message{
		Kind:      KindDailyDigest,
		CityID:    cityID,
		Title:     "📊 Agenda do dia",
		Body:      b.String(),
		CreatedAt: time.Now().UTC(),
	}
}
