package shop

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

const saveVersion = 1

// SaveV1 is the persisted slice of a session. Transient pieces — the live
// auction, the customer on the floor, inspection actions — are rebuilt by the
// loop after a restore and are deliberately absent.
type SaveV1 struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	SavedAtMs int64  `json:"saved_at_ms"`
	Tick      uint64 `json:"tick"`

	Started bool `json:"started"`
	GP      int  `json:"gp"`

	Inventory        []*Plant           `json:"inventory"`
	DisplaySlots     []*DisplaySlot     `json:"display_slots"`
	PropagationSlots []*PropagationSlot `json:"propagation_slots"`

	Upgrades map[string]int `json:"upgrades"`

	Log []LogEntry `json:"log"`

	TotalEarned int `json:"total_earned"`
	TotalSold   int `json:"total_sold"`

	LastCustomerMs     int64 `json:"last_customer_ms"`
	CustomerIntervalMs int64 `json:"customer_interval_ms"`
	LastAuctionMs      int64 `json:"last_auction_ms"`
	AuctionIntervalMs  int64 `json:"auction_interval_ms"`
}

// Export snapshots current state. Loop goroutine only.
func (s *Session) Export() SaveV1 {
	upgrades := make(map[string]int, len(s.upgrades))
	for id, u := range s.upgrades {
		if u.CurrentLevel > 0 {
			upgrades[id] = u.CurrentLevel
		}
	}
	return SaveV1{
		Version:            saveVersion,
		SessionID:          s.cfg.ID,
		SavedAtMs:          s.now(),
		Tick:               s.tick.Load(),
		Started:            s.started,
		GP:                 s.gp,
		Inventory:          s.inventory,
		DisplaySlots:       s.display,
		PropagationSlots:   s.propagation,
		Upgrades:           upgrades,
		Log:                s.log,
		TotalEarned:        s.totalEarned,
		TotalSold:          s.totalSold,
		LastCustomerMs:     s.lastCustomerMs,
		CustomerIntervalMs: s.customerIntervalMs,
		LastAuctionMs:      s.lastAuctionMs,
		AuctionIntervalMs:  s.auctionIntervalMs,
	}
}

// Import restores a save into the session. Must run before the loop starts.
// Every plant is checked against the plant catalog; a save referencing seeds
// the catalog no longer has cannot be trusted.
func (s *Session) Import(sv SaveV1) error {
	if sv.Version != saveVersion {
		return fmt.Errorf("save: unsupported version %d", sv.Version)
	}
	check := func(p *Plant) error {
		if _, ok := s.cats.Plants.ByID[p.SeedID]; !ok {
			return fmt.Errorf("save: seed %q not in catalog", p.SeedID)
		}
		return nil
	}
	for _, p := range sv.Inventory {
		if err := check(p); err != nil {
			return err
		}
	}
	for _, slot := range sv.DisplaySlots {
		if slot.Plant != nil {
			if err := check(slot.Plant); err != nil {
				return err
			}
		}
	}
	for _, slot := range sv.PropagationSlots {
		if slot.Plant != nil {
			if err := check(slot.Plant); err != nil {
				return err
			}
		}
	}

	s.tick.Store(sv.Tick)
	s.started = sv.Started
	s.gp = sv.GP
	s.inventory = sv.Inventory
	s.display = sv.DisplaySlots
	s.propagation = sv.PropagationSlots
	s.nextDisplayNum = len(s.display)
	s.nextPropagationNum = len(s.propagation)

	for id := range s.upgrades {
		s.upgrades[id].CurrentLevel = sv.Upgrades[id]
	}

	s.log = sv.Log
	s.totalEarned = sv.TotalEarned
	s.totalSold = sv.TotalSold

	s.lastCustomerMs = sv.LastCustomerMs
	s.customerIntervalMs = sv.CustomerIntervalMs
	s.lastAuctionMs = sv.LastAuctionMs
	s.auctionIntervalMs = sv.AuctionIntervalMs

	s.auction = nil
	s.customer = nil
	s.inspectionsLeft = s.cfg.Tune.BaseInspectionActions + s.upgradeLevel(UpgradeInspectionTools)

	return nil
}

// EncodeSave serializes a save as zstd-compressed JSON.
func EncodeSave(sv SaveV1) ([]byte, error) {
	raw, err := json.Marshal(sv)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func DecodeSave(blob []byte) (SaveV1, error) {
	var sv SaveV1
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return sv, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return sv, fmt.Errorf("save: decompress: %w", err)
	}
	if err := json.Unmarshal(raw, &sv); err != nil {
		return sv, fmt.Errorf("save: decode: %w", err)
	}
	return sv, nil
}
