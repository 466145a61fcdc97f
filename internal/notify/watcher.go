package notify

import (
	"fmt"
	"time"

	"github.com/traindesk/traindesk/internal/config"
	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/events"
	"github.com/traindesk/traindesk/internal/services"
)

// StartWatchLoop runs the fulfillment change watcher: every tick it
// re-derives the stage of each deal whose records changed and, on a stage
// move, fires events.OnStageChanged and a staff message. The watcher is
// strictly read-only over fulfillment facts; classification stays advice.
func StartWatchLoop() {
	if !config.C.WatcherEnabled {
		return
	}
	go func() {
		ticker := time.NewTicker(config.C.WatchInterval)
		defer ticker.Stop()

		client := NewClient()
		lastStages := make(map[uint]services.Stage)
		since := time.Now()
		for range ticker.C {
			now := time.Now()
			for _, ch := range stageChanges(since, lastStages) {
				if events.OnStageChanged != nil {
					events.OnStageChanged(ch.DealID, ch.Stage.String())
				}
				_ = client.Send(fmt.Sprintf("Deal #%d (%s) moved to %s.\nNext: %s",
					ch.DealID, ch.Company, ch.Stage, ch.NextAction))
			}
			runChase(client, now)
			since = now
		}
	}()
}

type stageChange struct {
	DealID     uint
	Company    string
	Stage      services.Stage
	NextAction string
}

// stageChanges reclassifies every deal touched since the last tick
// (directly, or through its forms or bookings) and records the ones whose
// stage moved. lastStages is updated in place.
func stageChanges(since time.Time, lastStages map[uint]services.Stage) []stageChange {
	type row struct {
		ID      uint
		Company string
	}
	var rows []row
	err := db.Conn().Raw(`SELECT DISTINCT d.id, d.company FROM deals d
		LEFT JOIN booking_forms f ON f.deal_id = d.id
		LEFT JOIN bookings     b ON b.deal_id = d.id
		WHERE d.updated_at >= ? OR f.updated_at >= ? OR b.updated_at >= ?`,
		since, since, since).Scan(&rows).Error
	if err != nil {
		return nil
	}

	var out []stageChange
	for _, r := range rows {
		snap, err := services.LoadSnapshot(r.ID)
		if err != nil {
			continue
		}
		stage := services.Classify(snap)
		if prev, seen := lastStages[r.ID]; seen && prev == stage {
			continue
		}
		lastStages[r.ID] = stage
		out = append(out, stageChange{
			DealID:     r.ID,
			Company:    r.Company,
			Stage:      stage,
			NextAction: services.NextAction(snap),
		})
	}
	return out
}

// runChase nags staff about courses starting soon while their deal's
// fulfillment is still incomplete. Offsets use the same strict one-minute
// trigger window as the tick, so each offset fires once per course.
func runChase(client *Client, now time.Time) {
	tick := now.Truncate(time.Minute)
	next := tick.Add(time.Minute)

	for _, ahead := range config.C.ChaseOffsets {
		// trigger = course.start_date - ahead in [tick, next)
		start := tick.Add(ahead)
		end := next.Add(ahead)

		type row struct {
			DealID    uint
			Company   string
			Course    string
			StartDate time.Time
		}
		var rows []row
		err := db.Conn().Table("courses c").
			Select(`c.deal_id, deals.company, c.name as course, c.start_date`).
			Joins("JOIN deals ON deals.id = c.deal_id").
			Where("c.start_date >= ? AND c.start_date < ?", start, end).
			Scan(&rows).Error
		if err != nil {
			continue
		}

		for _, r := range rows {
			snap, err := services.LoadSnapshot(r.DealID)
			if err != nil {
				continue
			}
			stage := services.Classify(snap)
			if stage.IsTerminal() {
				continue
			}
			_ = client.Send(fmt.Sprintf("%s starts %s and deal #%d (%s) is still at %s.\nNext: %s",
				r.Course, r.StartDate.Format("Mon, 02 Jan 2006"), r.DealID, r.Company,
				stage, services.NextAction(snap)))
		}
	}
}
