package shop

import (
	"encoding/json"
	"fmt"

	"bloombroker.app/internal/protocol"
)

// applyAct dispatches one queued action against current state. Rejections are
// silent no-ops: the RESULT carries a code but nothing mutates and nothing is
// logged.
func (s *Session) applyAct(env ActionEnvelope, nowMs int64, nowTick uint64) {
	act := env.Act

	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Ref:             act.ID,
		OK:              true,
		Tick:            nowTick,
	}

	reject := func(code, msg string) {
		res.OK = false
		res.Code = code
		res.Message = msg
	}

	switch act.Action {
	case protocol.ActStart:
		if s.started {
			reject(protocol.CodeConflict, "game already started")
			break
		}
		s.doStart(nowMs)

	case protocol.ActReset:
		s.initState(nowMs)
		s.dirty = true

	case protocol.ActMoveToDisplay:
		plant, idx := s.inventoryPlant(act.PlantID)
		if plant == nil {
			reject(protocol.CodeInvalidTarget, "plant not in inventory")
			break
		}
		slot := s.displaySlot(act.SlotID)
		if slot == nil {
			reject(protocol.CodeInvalidTarget, "no such display slot")
			break
		}
		if slot.Plant != nil {
			reject(protocol.CodeConflict, "display slot occupied")
			break
		}
		s.inventory = append(s.inventory[:idx], s.inventory[idx+1:]...)
		slot.Plant = plant
		s.dirty = true

	case protocol.ActRemoveFromDisplay:
		slot := s.displaySlot(act.SlotID)
		if slot == nil || slot.Plant == nil {
			reject(protocol.CodeInvalidTarget, "display slot empty")
			break
		}
		s.inventory = append(s.inventory, slot.Plant)
		slot.Plant = nil
		s.dirty = true

	case protocol.ActSendToPropagation:
		plant, takeOut := s.ownedPlant(act.PlantID)
		if plant == nil {
			reject(protocol.CodeInvalidTarget, "plant not in inventory or on display")
			break
		}
		slot := s.propagationSlot(act.SlotID)
		if slot == nil {
			reject(protocol.CodeInvalidTarget, "no such propagation slot")
			break
		}
		if slot.Plant != nil {
			reject(protocol.CodeConflict, "propagation slot occupied")
			break
		}
		takeOut()
		slot.Plant = plant
		slot.StartMs = nowMs
		slot.DurationMs = PropagationTime(plant, s.upgradeLevel(UpgradePropagationBench), int64(s.cfg.Tune.PropagationTimeBaseMs))
		slot.IsComplete = false
		s.dirty = true

	case protocol.ActCollectPropagation:
		slot := s.propagationSlot(act.SlotID)
		if slot == nil || slot.Plant == nil {
			reject(protocol.CodeInvalidTarget, "propagation slot empty")
			break
		}
		if !slot.IsComplete {
			reject(protocol.CodeConflict, "propagation not finished")
			break
		}
		offspring, err := s.factory.Propagate(slot.Plant)
		if err != nil {
			reject(protocol.CodeBadRequest, err.Error())
			break
		}
		s.inventory = append(s.inventory, slot.Plant, offspring)
		msg := fmt.Sprintf("Propagated %s!", offspring.Name)
		if offspring.HasCondition(FlagRareVariant) {
			msg = fmt.Sprintf("Propagated %s — a %s variant emerged!", offspring.Name, offspring.Variant)
		}
		slot.Plant = nil
		slot.StartMs = 0
		slot.IsComplete = false
		s.appendLog(nowMs, LogPropagation, msg, 0)
		s.dirty = true

	case protocol.ActBuyAuction:
		if s.auction == nil {
			reject(protocol.CodeInvalidTarget, "no active auction")
			break
		}
		price := s.auction.AskingPrice
		if s.gp < price {
			reject(protocol.CodeNoResource, "not enough GP")
			break
		}
		s.gp -= price
		s.inventory = append(s.inventory, s.auction.Plant)
		s.appendLog(nowMs, LogPurchase,
			fmt.Sprintf("Bought %s from %s for %d GP", s.auction.Plant.Name, s.auction.Seller.Name, price),
			-price)
		s.endAuction(nowMs)
		s.dirty = true

	case protocol.ActPassAuction:
		if s.auction == nil {
			reject(protocol.CodeInvalidTarget, "no active auction")
			break
		}
		s.appendLog(nowMs, LogAuctionPass,
			fmt.Sprintf("Passed on %s's %s", s.auction.Seller.Name, s.auction.Plant.Name), 0)
		s.endAuction(nowMs)
		s.dirty = true

	case protocol.ActInspect:
		s.applyInspect(&res, act.Probe)

	case protocol.ActBuyUpgrade:
		def, ok := s.cats.Upgrades.ByID[act.UpgradeID]
		if !ok {
			reject(protocol.CodeInvalidTarget, "no such upgrade")
			break
		}
		u := s.upgrades[def.ID]
		if u.CurrentLevel >= def.MaxLevel {
			reject(protocol.CodeConflict, "upgrade at max level")
			break
		}
		cost := UpgradeCost(def.BaseCost, def.CostMultiplier, u.CurrentLevel)
		if s.gp < cost {
			reject(protocol.CodeNoResource, "not enough GP")
			break
		}
		s.gp -= cost
		u.CurrentLevel++
		s.applyUpgradeEffect(def.ID, u.CurrentLevel)
		s.appendLog(nowMs, LogPurchase,
			fmt.Sprintf("Purchased %s (level %d) for %d GP", def.Name, u.CurrentLevel, cost), -cost)
		s.dirty = true

	default:
		reject(protocol.CodeBadRequest, fmt.Sprintf("unknown action %q", act.Action))
	}

	if env.Out != nil {
		if b, err := json.Marshal(res); err == nil {
			sendLatest(env.Out, b)
		}
	}
}

// doStart flips the session into a running game and grants the starter stock.
func (s *Session) doStart(nowMs int64) {
	s.started = true
	for i := 0; i < s.cfg.Tune.StarterPlants; i++ {
		s.inventory = append(s.inventory, s.factory.NewPlant(s.factory.RandomSeed(), AcquireStarter))
	}
	s.lastCustomerMs = nowMs
	s.lastAuctionMs = nowMs
	s.auctionIntervalMs = s.rollAuctionInterval()
	s.appendLog(nowMs, LogPurchase,
		fmt.Sprintf("Welcome to Bloombroker! You received %d starter plants.", s.cfg.Tune.StarterPlants), 0)
	s.dirty = true
}

// endAuction clears the current auction and arms the next one.
func (s *Session) endAuction(nowMs int64) {
	s.auction = nil
	s.lastAuctionMs = nowMs
	s.auctionIntervalMs = s.rollAuctionInterval()
}

// Probe targets, checked in order. Leaves can surface either affliction.
var probeTargets = map[string][]ConditionFlag{
	"leaves": {FlagDiseased, FlagPests},
	"roots":  {FlagDiseased},
	"label":  {FlagFake},
	"uv":     {FlagRareVariant},
}

func (s *Session) applyInspect(res *protocol.ResultMsg, probe string) {
	if s.auction == nil {
		res.OK = false
		res.Code = protocol.CodeInvalidTarget
		res.Message = "no active auction"
		return
	}
	targets, ok := probeTargets[probe]
	if !ok {
		res.OK = false
		res.Code = protocol.CodeBadRequest
		res.Message = fmt.Sprintf("unknown probe %q", probe)
		return
	}
	if s.inspectionsLeft <= 0 {
		res.OK = false
		res.Code = protocol.CodeNoResource
		res.Message = "No inspection actions remaining!"
		return
	}

	s.inspectionsLeft--
	s.dirty = true

	chance := 0.5 + 0.15*float64(s.upgradeLevel(UpgradeInspectionTools))
	if probe == "uv" {
		chance += 0.2
	}

	plant := s.auction.Plant
	if s.rng.Float64() < chance {
		for _, flag := range targets {
			if plant.Discover(flag) {
				res.Discovered = string(flag)
				res.Message = fmt.Sprintf("Inspection revealed: %s", flag)
				return
			}
		}
	}
	res.Message = "You find nothing conclusive."
}

// applyUpgradeEffect applies the mechanical side of a purchased level.
// Appraisal and inspection-tool bonuses are read off the level at use time and
// need no state change here.
func (s *Session) applyUpgradeEffect(id string, newLevel int) {
	switch id {
	case UpgradeDisplayExpansion:
		s.appendDisplaySlot()
	case UpgradePropagationBench:
		if newLevel == 3 || newLevel == 6 {
			s.appendPropagationSlot()
		}
	case UpgradeCustomerTraffic:
		s.customerIntervalMs = int64(s.cfg.Tune.CustomerIntervalMs) - int64(newLevel)*2000
		if s.customerIntervalMs < 2000 {
			s.customerIntervalMs = 2000
		}
	}
}

// ownedPlant finds a plant in inventory or on display. The returned closure
// removes it from whichever container holds it; call only after the transfer
// is certain to happen.
func (s *Session) ownedPlant(instanceID string) (*Plant, func()) {
	if p, idx := s.inventoryPlant(instanceID); p != nil {
		return p, func() { s.inventory = append(s.inventory[:idx], s.inventory[idx+1:]...) }
	}
	for _, slot := range s.display {
		if slot.Plant != nil && slot.Plant.InstanceID == instanceID {
			slot := slot
			return slot.Plant, func() { slot.Plant = nil }
		}
	}
	return nil, nil
}

func (s *Session) inventoryPlant(instanceID string) (*Plant, int) {
	for i, p := range s.inventory {
		if p.InstanceID == instanceID {
			return p, i
		}
	}
	return nil, -1
}

func (s *Session) displaySlot(id string) *DisplaySlot {
	for _, slot := range s.display {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

func (s *Session) propagationSlot(id string) *PropagationSlot {
	for _, slot := range s.propagation {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}
