package shop

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"bloombroker.app/internal/protocol"
	"bloombroker.app/internal/sim/catalogs"
	"bloombroker.app/internal/sim/tuning"
)

type Config struct {
	ID   string // session id, doubles as the save slot
	Tune tuning.Tuning
	Seed int64 // RNG seed; 0 means derive from the clock
}

// ActionEnvelope carries one player action into the session loop. Out, when
// non-nil, receives the RESULT message for this action.
type ActionEnvelope struct {
	Act protocol.ActMsg
	Out chan []byte
}

type AttachRequest struct {
	ClientID string
	Out      chan []byte
	Resp     chan AttachResponse
}

type AttachResponse struct {
	Welcome  protocol.WelcomeMsg
	Catalogs []protocol.CatalogMsg
}

// Journal receives every activity-log entry as it is appended. May be nil.
type Journal interface {
	WriteEntry(sessionID string, tick uint64, e LogEntry) error
}

// SaveSink receives serialized save blobs. Implementations must not block the
// session loop. May be nil.
type SaveSink interface {
	Put(sessionID string, blob []byte)
}

type Metrics struct {
	Tick          uint64  `json:"tick"`
	GP            int64   `json:"gp"`
	Inventory     int64   `json:"inventory"`
	Clients       int64   `json:"clients"`
	AuctionActive bool    `json:"auction_active"`
	StepMS        float64 `json:"step_ms"`
}

// Session is the single-writer game aggregate. All state is owned by the loop
// goroutine; external collaborators talk to it through channels. There is no
// parallelism inside a session: every action and every tick step runs to
// completion before the next event is considered.
type Session struct {
	cfg     Config
	cats    *catalogs.Catalogs
	factory *Factory
	rng     *rand.Rand
	viewRNG *rand.Rand // estimate jitter for views; kept off the sim stream
	now     func() int64

	tick atomic.Uint64

	started bool
	gp      int

	inventory   []*Plant
	display     []*DisplaySlot
	propagation []*PropagationSlot
	upgrades    map[string]*UpgradeState

	auction *Auction

	customer            *Customer
	customerVanishAtMs  int64
	customerRemainingMs int64

	inspectionsLeft int

	lastCustomerMs     int64
	customerIntervalMs int64
	lastAuctionMs      int64
	auctionIntervalMs  int64

	log []LogEntry

	totalEarned int
	totalSold   int

	nextDisplayNum     int
	nextPropagationNum int

	inbox  chan ActionEnvelope
	attach chan AttachRequest
	detach chan string
	stop   chan struct{}

	clients map[string]*clientState

	journal Journal
	saver   SaveSink
	dirty   bool

	metricGP        atomic.Int64
	metricInventory atomic.Int64
	metricClients   atomic.Int64
	metricAuction   atomic.Int64
	metricStepUs    atomic.Int64
}

type clientState struct {
	Out chan []byte
}

func New(cfg Config, cats *catalogs.Catalogs) (*Session, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("session: empty id")
	}
	if cats == nil {
		return nil, fmt.Errorf("session: nil catalogs")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Session{
		cfg:      cfg,
		cats:     cats,
		rng:      rand.New(rand.NewSource(seed)),
		viewRNG:  rand.New(rand.NewSource(seed + 1)),
		now:      func() int64 { return time.Now().UnixMilli() },
		upgrades: map[string]*UpgradeState{},
		inbox:    make(chan ActionEnvelope, 256),
		attach:   make(chan AttachRequest, 16),
		detach:   make(chan string, 16),
		stop:     make(chan struct{}),
		clients:  map[string]*clientState{},
	}
	s.factory = &Factory{
		Cats: cats,
		Tune: cfg.Tune,
		RNG:  s.rng,
		Now:  func() int64 { return s.now() },
	}
	s.initState(s.now())
	return s, nil
}

// SetClock replaces the wall-clock source. Call before Run; intended for
// tests and replays.
func (s *Session) SetClock(now func() int64) { s.now = now }

func (s *Session) SetJournal(j Journal) { s.journal = j }
func (s *Session) SetSaveSink(k SaveSink) { s.saver = k }

func (s *Session) ID() string { return s.cfg.ID }

func (s *Session) Inbox() chan<- ActionEnvelope { return s.inbox }
func (s *Session) Attach() chan<- AttachRequest { return s.attach }
func (s *Session) Detach() chan<- string        { return s.detach }

func (s *Session) CurrentTick() uint64 { return s.tick.Load() }

func (s *Session) Metrics() Metrics {
	return Metrics{
		Tick:          s.tick.Load(),
		GP:            s.metricGP.Load(),
		Inventory:     s.metricInventory.Load(),
		Clients:       s.metricClients.Load(),
		AuctionActive: s.metricAuction.Load() != 0,
		StepMS:        float64(s.metricStepUs.Load()) / 1000,
	}
}

// initState resets the aggregate to a fresh pre-start game.
func (s *Session) initState(nowMs int64) {
	t := s.cfg.Tune

	s.started = false
	s.gp = t.StartingGP
	s.inventory = nil
	s.auction = nil
	s.customer = nil
	s.customerVanishAtMs = 0
	s.customerRemainingMs = int64(t.CustomerIntervalMs)
	s.inspectionsLeft = t.BaseInspectionActions
	s.log = nil
	s.totalEarned = 0
	s.totalSold = 0

	s.display = nil
	s.nextDisplayNum = 0
	for i := 0; i < t.StartingDisplaySlots; i++ {
		s.appendDisplaySlot()
	}
	s.propagation = nil
	s.nextPropagationNum = 0
	for i := 0; i < t.StartingPropagationSlots; i++ {
		s.appendPropagationSlot()
	}

	s.upgrades = map[string]*UpgradeState{}
	for _, id := range s.cats.Upgrades.IDs {
		s.upgrades[id] = &UpgradeState{ID: id}
	}

	s.lastCustomerMs = nowMs
	s.customerIntervalMs = int64(t.CustomerIntervalMs)
	s.lastAuctionMs = nowMs
	s.auctionIntervalMs = s.rollAuctionInterval()
}

func (s *Session) appendDisplaySlot() {
	s.display = append(s.display, &DisplaySlot{ID: fmt.Sprintf("display-%d", s.nextDisplayNum)})
	s.nextDisplayNum++
}

func (s *Session) appendPropagationSlot() {
	s.propagation = append(s.propagation, &PropagationSlot{
		ID:         fmt.Sprintf("prop-%d", s.nextPropagationNum),
		DurationMs: int64(s.cfg.Tune.PropagationTimeBaseMs),
	})
	s.nextPropagationNum++
}

func (s *Session) rollAuctionInterval() int64 {
	min := int64(s.cfg.Tune.AuctionIntervalMinMs)
	max := int64(s.cfg.Tune.AuctionIntervalMaxMs)
	if max <= min {
		return min
	}
	return min + int64(s.rng.Float64()*float64(max-min))
}

func (s *Session) upgradeLevel(id string) int {
	if u := s.upgrades[id]; u != nil {
		return u.CurrentLevel
	}
	return 0
}

// Run owns the session loop: a ticker at the configured cadence plus the
// attach/detach/action channels. Mirrors the world-loop contract: state is
// only touched from here.
func (s *Session) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Tune.TickIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []ActionEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.attach:
			s.handleAttach(req)
		case id := <-s.detach:
			delete(s.clients, id)
			s.metricClients.Store(int64(len(s.clients)))
		case env := <-s.inbox:
			pending = append(pending, env)
		case <-ticker.C:
			s.step(pending)
			pending = pending[:0]
		}
	}
}

func (s *Session) Stop() { close(s.stop) }

// StepOnce applies the queued envelopes and advances one tick at the given
// time. It exists for tests; the server path goes through Run.
func (s *Session) StepOnce(envs []ActionEnvelope) uint64 {
	s.step(envs)
	return s.tick.Load()
}

func (s *Session) step(envs []ActionEnvelope) {
	start := time.Now()
	nowMs := s.now()
	nowTick := s.tick.Load()

	for _, env := range envs {
		s.applyAct(env, nowMs, nowTick)
	}

	s.advance(nowMs)

	s.broadcastState(nowMs, nowTick)
	s.maybeSave(nowTick)

	s.metricGP.Store(int64(s.gp))
	s.metricInventory.Store(int64(len(s.inventory)))
	if s.auction != nil {
		s.metricAuction.Store(1)
	} else {
		s.metricAuction.Store(0)
	}
	s.metricStepUs.Store(time.Since(start).Microseconds())

	s.tick.Add(1)
}

func (s *Session) handleAttach(req AttachRequest) {
	if req.Out != nil && req.ClientID != "" {
		s.clients[req.ClientID] = &clientState{Out: req.Out}
		s.metricClients.Store(int64(len(s.clients)))
	}

	t := s.cfg.Tune
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       s.cfg.ID,
		Params: protocol.SessionParams{
			TickIntervalMs:        t.TickIntervalMs,
			CustomerIntervalMs:    t.CustomerIntervalMs,
			AuctionIntervalMinMs:  t.AuctionIntervalMinMs,
			AuctionIntervalMaxMs:  t.AuctionIntervalMaxMs,
			AuctionDurationMs:     t.AuctionDurationMs,
			PropagationTimeBaseMs: t.PropagationTimeBaseMs,
			MutationChance:        t.MutationChance,
			StartingGP:            t.StartingGP,
		},
		Catalogs: protocol.CatalogDigests{
			Plants:    protocol.DigestRef{Digest: s.cats.Plants.Digest, Count: len(s.cats.Plants.IDs)},
			Customers: protocol.DigestRef{Digest: s.cats.Customers.Digest, Count: len(s.cats.Customers.Defs)},
			Sellers:   protocol.DigestRef{Digest: s.cats.Sellers.Digest, Count: len(s.cats.Sellers.Defs)},
			Variants:  protocol.DigestRef{Digest: s.cats.Variants.Digest, Count: len(s.cats.Variants.Names)},
			Upgrades:  protocol.DigestRef{Digest: s.cats.Upgrades.Digest, Count: len(s.cats.Upgrades.IDs)},
		},
	}

	seeds := make([]catalogs.PlantSeed, 0, len(s.cats.Plants.IDs))
	for _, id := range s.cats.Plants.IDs {
		seeds = append(seeds, s.cats.Plants.ByID[id])
	}
	upgrades := make([]catalogs.UpgradeDef, 0, len(s.cats.Upgrades.IDs))
	for _, id := range s.cats.Upgrades.IDs {
		upgrades = append(upgrades, s.cats.Upgrades.ByID[id])
	}

	cat := func(name, digest string, data interface{}) protocol.CatalogMsg {
		return protocol.CatalogMsg{
			Type:            protocol.TypeCatalog,
			ProtocolVersion: protocol.Version,
			Name:            name,
			Digest:          digest,
			Part:            1,
			TotalParts:      1,
			Data:            data,
		}
	}
	catalogMsgs := []protocol.CatalogMsg{
		cat("plants", s.cats.Plants.Digest, seeds),
		cat("variants", s.cats.Variants.Digest, s.cats.Variants.Names),
		cat("upgrades", s.cats.Upgrades.Digest, upgrades),
	}

	if req.Resp != nil {
		req.Resp <- AttachResponse{Welcome: welcome, Catalogs: catalogMsgs}
	}
}

// appendLog prepends a bounded activity entry and mirrors it to the journal.
func (s *Session) appendLog(nowMs int64, typ LogType, msg string, gpChange int) {
	e := LogEntry{
		ID:          newID(),
		Type:        typ,
		Message:     msg,
		TimestampMs: nowMs,
		GPChange:    gpChange,
	}
	s.log = append([]LogEntry{e}, s.log...)
	if len(s.log) > activityLogMax {
		s.log = s.log[:activityLogMax]
	}
	if s.journal != nil {
		_ = s.journal.WriteEntry(s.cfg.ID, s.tick.Load(), e)
	}
}

func (s *Session) maybeSave(nowTick uint64) {
	if s.saver == nil || !s.dirty {
		return
	}
	every := uint64(s.cfg.Tune.SaveEveryTicks)
	if every == 0 {
		every = 1
	}
	if nowTick%every != 0 {
		return
	}
	blob, err := EncodeSave(s.Export())
	if err != nil {
		return
	}
	s.saver.Put(s.cfg.ID, blob)
	s.dirty = false
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
