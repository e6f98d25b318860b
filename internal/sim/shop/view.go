package shop

import (
	"encoding/json"

	"bloombroker.app/internal/protocol"
)

// plantView renders a plant for the client. Only discovered flags cross the
// wire; an undiscovered rare variant also has its variant name and marker tags
// withheld so the render model cannot leak the roll.
func (s *Session) plantView(p *Plant) protocol.PlantView {
	accuracy := 0.1 * float64(s.upgradeLevel(UpgradeAppraisalGuide))
	if accuracy > 1 {
		accuracy = 1
	}

	discovered := make([]string, 0, len(p.DiscoveredFlags))
	for _, f := range p.DiscoveredFlags {
		discovered = append(discovered, string(f))
	}

	variant := p.Variant
	tags := p.Tags
	if p.HasCondition(FlagRareVariant) && !p.HasDiscovered(FlagRareVariant) {
		variant = ""
		tags = make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			if t == "rare" || t == "variegated" {
				continue
			}
			tags = append(tags, t)
		}
	}

	return protocol.PlantView{
		InstanceID: p.InstanceID,
		SeedID:     p.SeedID,
		Name:       p.Name,
		Family:     p.Family,
		Genus:      p.Genus,
		Species:    p.Species,
		Variant:    variant,
		Tags:       tags,
		Traits: protocol.TraitsView{
			Rarity:           p.Traits.Rarity,
			Demand:           p.Traits.Demand,
			CareDifficulty:   p.Traits.CareDifficulty,
			PropagationSpeed: p.Traits.PropagationSpeed,
			Health:           p.Traits.Health,
		},
		EstimatedValue:  EstimatedValue(s.viewRNG, p, accuracy),
		DiscoveredFlags: discovered,
		AcquiredMethod:  string(p.AcquiredMethod),
	}
}

func (s *Session) buildState(nowMs int64, nowTick uint64) protocol.StateMsg {
	msg := protocol.StateMsg{
		Type:                protocol.TypeState,
		ProtocolVersion:     protocol.Version,
		Tick:                nowTick,
		NowMs:               nowMs,
		Started:             s.started,
		GP:                  s.gp,
		TotalEarned:         s.totalEarned,
		TotalSold:           s.totalSold,
		CustomerRemainingMs: s.customerRemainingMs,
		Inventory:           make([]protocol.PlantView, 0, len(s.inventory)),
		DisplaySlots:        make([]protocol.DisplaySlotView, 0, len(s.display)),
		PropagationSlots:    make([]protocol.PropagationSlotView, 0, len(s.propagation)),
		Upgrades:            make([]protocol.UpgradeView, 0, len(s.cats.Upgrades.IDs)),
		Log:                 make([]protocol.LogEntryView, 0, len(s.log)),
	}

	for _, p := range s.inventory {
		msg.Inventory = append(msg.Inventory, s.plantView(p))
	}

	for _, slot := range s.display {
		v := protocol.DisplaySlotView{ID: slot.ID}
		if slot.Plant != nil {
			pv := s.plantView(slot.Plant)
			v.Plant = &pv
		}
		msg.DisplaySlots = append(msg.DisplaySlots, v)
	}

	for _, slot := range s.propagation {
		v := protocol.PropagationSlotView{ID: slot.ID, IsComplete: slot.IsComplete}
		if slot.Plant != nil {
			pv := s.plantView(slot.Plant)
			v.Plant = &pv
			if !slot.IsComplete {
				v.RemainingMs = slot.StartMs + slot.DurationMs - nowMs
				if v.RemainingMs < 0 {
					v.RemainingMs = 0
				}
			}
		}
		msg.PropagationSlots = append(msg.PropagationSlots, v)
	}

	if a := s.auction; a != nil {
		claimed := make([]string, 0, len(a.ClaimedConditions))
		for _, f := range a.ClaimedConditions {
			claimed = append(claimed, string(f))
		}
		remaining := a.StartMs + a.DurationMs - nowMs
		if remaining < 0 {
			remaining = 0
		}
		msg.Auction = &protocol.AuctionView{
			ID:                a.ID,
			Plant:             s.plantView(a.Plant),
			SellerName:        a.Seller.Name,
			SellerPersona:     a.Seller.Persona,
			AskingPrice:       a.AskingPrice,
			ClaimedConditions: claimed,
			RemainingMs:       remaining,
			InspectionsLeft:   s.inspectionsLeft,
		}
	}

	if c := s.customer; c != nil {
		msg.Customer = &protocol.CustomerView{
			ID:            c.ID,
			Name:          c.Name,
			Archetype:     c.Archetype,
			PreferredTags: c.PreferredTags,
			AvoidTags:     c.AvoidTags,
			BudgetMin:     c.BudgetMin,
			BudgetMax:     c.BudgetMax,
		}
	}

	for _, id := range s.cats.Upgrades.IDs {
		def := s.cats.Upgrades.ByID[id]
		level := s.upgradeLevel(id)
		uv := protocol.UpgradeView{
			ID:          id,
			Name:        def.Name,
			Description: def.Description,
			Level:       level,
			MaxLevel:    def.MaxLevel,
		}
		if level < def.MaxLevel {
			uv.NextCost = UpgradeCost(def.BaseCost, def.CostMultiplier, level)
		}
		msg.Upgrades = append(msg.Upgrades, uv)
	}

	for _, e := range s.log {
		msg.Log = append(msg.Log, protocol.LogEntryView{
			ID:          e.ID,
			Type:        string(e.Type),
			Message:     e.Message,
			TimestampMs: e.TimestampMs,
			GPChange:    e.GPChange,
		})
	}

	return msg
}

func (s *Session) broadcastState(nowMs int64, nowTick uint64) {
	if len(s.clients) == 0 {
		return
	}
	b, err := json.Marshal(s.buildState(nowMs, nowTick))
	if err != nil {
		return
	}
	for _, c := range s.clients {
		sendLatest(c.Out, b)
	}
}
