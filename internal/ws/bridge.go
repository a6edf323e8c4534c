package ws

import (
	"github.com/charmbracelet/log"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/report"
	"github.com/sz3lp/sz/internal/simulator"
)

// Bridge implements simulator.Callback. It rolls minutes up into days and
// sends each completed day to one client as a sim:day message.
type Bridge struct {
	send   func([]byte) bool
	logger *log.Logger
	policy simulator.Policy
	seed   string
	acc    *report.DailyAccumulator
}

func NewBridge(send func([]byte) bool, logger *log.Logger, policy simulator.Policy, seed string) *Bridge {
	b := &Bridge{send: send, logger: logger, policy: policy, seed: seed}
	b.acc = report.NewDailyAccumulator(b.onDay)
	return b
}

func (b *Bridge) OnMinute(s *model.SimulationState) {
	b.acc.OnMinute(s)
}

func (b *Bridge) onDay(d report.DailyRollup) {
	msg, err := NewEnvelope(TypeSimDay, SimDayPayload{Policy: b.policy, Seed: b.seed, Day: d})
	if err != nil {
		b.logger.Error("marshaling sim day", "err", err)
		return
	}
	b.send(msg)
}

// Days returns the days rolled up so far.
func (b *Bridge) Days() []report.DailyRollup {
	return b.acc.Days()
}
