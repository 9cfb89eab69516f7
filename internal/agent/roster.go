package agent

import (
	"fmt"
	"math/rand"

	"supplychain-sim/internal/logger"
	"supplychain-sim/internal/scenario"
)

// Roster はイテレーションに参加するエージェントの集合
type Roster struct {
	agents []DecisionMaker
}

// NewRoster は設定から COO 1名と地域ごとのマネージャー・サプライヤーを作成する
func NewRoster(cfg scenario.Config, rng *rand.Rand) *Roster {
	agents := []DecisionMaker{
		New("coo", RoleCOO, "", cfg.Agents.COO, rng),
	}
	for _, region := range cfg.RegionNames() {
		agents = append(agents,
			New(fmt.Sprintf("manager_%s", region), RoleRegionalManager, region, cfg.Agents.RegionalManager, rng),
			New(fmt.Sprintf("supplier_%s", region), RoleSupplier, region, cfg.Agents.Supplier, rng),
		)
	}
	return &Roster{agents: agents}
}

// NewRosterWith は任意の DecisionMaker から Roster を作成する
func NewRosterWith(agents ...DecisionMaker) *Roster {
	return &Roster{agents: agents}
}

// Agents はエージェント一覧を返す
func (r *Roster) Agents() []DecisionMaker {
	out := make([]DecisionMaker, len(r.agents))
	copy(out, r.agents)
	return out
}

// Decide は全エージェントに1週間分の意思決定を行わせる
// パニックしたエージェントはスキップし、週のループは継続する
func (r *Roster) Decide(p Perception) []Decision {
	decisions := make([]Decision, 0, len(r.agents))
	for _, a := range r.agents {
		d, err := safeDecide(a, p)
		if err != nil {
			logger.Warn(a.Name(), "decision failed at week %d: %v", p.Week, err)
			continue
		}
		decisions = append(decisions, d)
	}
	return decisions
}

func safeDecide(a DecisionMaker, p Perception) (d Decision, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return a.Decide(p), nil
}
