package shop

import "fmt"

// advance runs the timed systems for one tick. Order matters: a customer who
// vanished this tick frees the floor before the arrival timer is checked, and
// auctions spawn before they are tested for expiry so a zero-duration config
// still shows the auction for one tick.
func (s *Session) advance(nowMs int64) {
	if !s.started {
		return
	}

	if s.customer != nil && nowMs >= s.customerVanishAtMs {
		s.customer = nil
		s.lastCustomerMs = nowMs
		s.dirty = true
	}

	if s.customer == nil {
		s.customerRemainingMs = s.customerIntervalMs - (nowMs - s.lastCustomerMs)
		if s.customerRemainingMs < 0 {
			s.customerRemainingMs = 0
		}
		if nowMs-s.lastCustomerMs >= s.customerIntervalMs {
			s.customerArrives(nowMs)
		}
	} else {
		s.customerRemainingMs = 0
	}

	if s.auction == nil {
		if nowMs-s.lastAuctionMs >= s.auctionIntervalMs {
			s.auction = s.factory.NewAuction()
			s.inspectionsLeft = s.cfg.Tune.BaseInspectionActions + s.upgradeLevel(UpgradeInspectionTools)
			s.dirty = true
		}
	} else if nowMs-s.auction.StartMs >= s.auction.DurationMs {
		s.endAuction(nowMs)
		s.dirty = true
	}

	for _, slot := range s.propagation {
		if slot.Plant != nil && !slot.IsComplete && nowMs-slot.StartMs >= slot.DurationMs {
			slot.IsComplete = true
			s.dirty = true
		}
	}
}

// customerArrives draws a customer and resolves the visit immediately. Only
// the first displayed plant that matches their taste is considered; if its
// price falls outside their budget the customer leaves without browsing
// further. The customer stays on the floor until the linger window passes
// either way.
func (s *Session) customerArrives(nowMs int64) {
	s.resolveVisit(nowMs, s.factory.RandomCustomer())
}

func (s *Session) resolveVisit(nowMs int64, c *Customer) {
	s.customer = c
	s.customerVanishAtMs = nowMs + int64(s.cfg.Tune.CustomerLingerMs)
	s.dirty = true

	for _, slot := range s.display {
		if slot.Plant == nil || !Matches(slot.Plant, c) {
			continue
		}
		price := SalePrice(s.rng, slot.Plant, c)
		if price >= c.BudgetMin {
			s.gp += price
			s.totalEarned += price
			s.totalSold++
			s.appendLog(nowMs, LogSale,
				fmt.Sprintf("%s bought %s for %d GP", c.Name, slot.Plant.Name, price), price)
			slot.Plant = nil
			return
		}
		break
	}

	s.appendLog(nowMs, LogCustomerLeft,
		fmt.Sprintf("%s browsed but left empty-handed", c.Name), 0)
}
