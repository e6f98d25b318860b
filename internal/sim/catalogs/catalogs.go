package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Plants    PlantCatalog
	Customers CustomerCatalog
	Sellers   SellerCatalog
	Variants  VariantCatalog
	Upgrades  UpgradeCatalog
}

// PlantCatalog holds the species table. IDs is sorted so random picks indexed
// off an RNG are stable across runs for the same catalog content.
type PlantCatalog struct {
	IDs    []string
	ByID   map[string]PlantSeed
	Digest string
}

type PlantSeed struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Family  string   `json:"family"`
	Genus   string   `json:"genus"`
	Species string   `json:"species"`
	Tags    []string `json:"tags"`

	BaseTraits BaseTraits `json:"base_traits"`
	BaseFMV    int        `json:"base_fmv"`
}

type BaseTraits struct {
	Rarity           int `json:"rarity"`
	Demand           int `json:"demand"`
	CareDifficulty   int `json:"care_difficulty"`
	PropagationSpeed int `json:"propagation_speed"`
}

type CustomerCatalog struct {
	Defs   []CustomerDef
	Digest string
}

type CustomerDef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Archetype string `json:"archetype"`

	PreferredTags []string `json:"preferred_tags"`
	AvoidTags     []string `json:"avoid_tags"`

	// Zero means no minimum for that trait.
	MinRarity         int `json:"min_rarity,omitempty"`
	MinDemand         int `json:"min_demand,omitempty"`
	MinCareDifficulty int `json:"min_care_difficulty,omitempty"`

	BudgetMin  int     `json:"budget_min"`
	BudgetMax  int     `json:"budget_max"`
	Generosity float64 `json:"generosity"`
}

type SellerCatalog struct {
	Defs   []SellerDef
	Digest string
}

type SellerDef struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Persona      string   `json:"persona"`
	Honesty      float64  `json:"honesty"`       // 0..1
	PricingStyle string   `json:"pricing_style"` // "below" | "at" | "above"
	Specialties  []string `json:"specialties,omitempty"`
}

type VariantCatalog struct {
	Names  []string
	Digest string
}

type UpgradeCatalog struct {
	IDs    []string
	ByID   map[string]UpgradeDef
	Digest string
}

type UpgradeDef struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	MaxLevel       int     `json:"max_level"`
	BaseCost       int     `json:"base_cost"`
	CostMultiplier float64 `json:"cost_multiplier"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadPlants(filepath.Join(configDir, "plants.json"), &c.Plants); err != nil {
		return nil, err
	}
	if err := loadCustomers(filepath.Join(configDir, "customers.json"), &c.Customers); err != nil {
		return nil, err
	}
	if err := loadSellers(filepath.Join(configDir, "sellers.json"), &c.Sellers); err != nil {
		return nil, err
	}
	if err := loadVariants(filepath.Join(configDir, "variants.json"), &c.Variants); err != nil {
		return nil, err
	}
	if err := loadUpgrades(filepath.Join(configDir, "upgrades.json"), &c.Upgrades); err != nil {
		return nil, err
	}

	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadPlants(path string, out *PlantCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []PlantSeed
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("plants.json: %w", err)
	}
	if len(defs) == 0 {
		return fmt.Errorf("plants.json: empty catalog")
	}
	out.ByID = map[string]PlantSeed{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("plants.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("plants.json: duplicate id %s", d.ID)
		}
		if d.BaseFMV <= 0 {
			return fmt.Errorf("plants.json: %s: base_fmv must be positive", d.ID)
		}
		out.ByID[d.ID] = d
	}

	ids := make([]string, 0, len(out.ByID))
	for id := range out.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.IDs = ids
	return nil
}

func loadCustomers(path string, out *CustomerCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := json.Unmarshal(raw, &out.Defs); err != nil {
		return fmt.Errorf("customers.json: %w", err)
	}
	if len(out.Defs) == 0 {
		return fmt.Errorf("customers.json: empty catalog")
	}
	seen := map[string]bool{}
	for _, d := range out.Defs {
		if d.ID == "" {
			return fmt.Errorf("customers.json: empty id")
		}
		if seen[d.ID] {
			return fmt.Errorf("customers.json: duplicate id %s", d.ID)
		}
		seen[d.ID] = true
		if d.BudgetMin > d.BudgetMax {
			return fmt.Errorf("customers.json: %s: budget_min > budget_max", d.ID)
		}
		if d.Generosity <= 0 {
			return fmt.Errorf("customers.json: %s: generosity must be positive", d.ID)
		}
	}
	return nil
}

func loadSellers(path string, out *SellerCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := json.Unmarshal(raw, &out.Defs); err != nil {
		return fmt.Errorf("sellers.json: %w", err)
	}
	if len(out.Defs) == 0 {
		return fmt.Errorf("sellers.json: empty catalog")
	}
	seen := map[string]bool{}
	for _, d := range out.Defs {
		if d.ID == "" {
			return fmt.Errorf("sellers.json: empty id")
		}
		if seen[d.ID] {
			return fmt.Errorf("sellers.json: duplicate id %s", d.ID)
		}
		seen[d.ID] = true
		if d.Honesty < 0 || d.Honesty > 1 {
			return fmt.Errorf("sellers.json: %s: honesty out of [0,1]", d.ID)
		}
		switch d.PricingStyle {
		case "below", "at", "above":
		default:
			return fmt.Errorf("sellers.json: %s: bad pricing_style %q", d.ID, d.PricingStyle)
		}
	}
	return nil
}

func loadVariants(path string, out *VariantCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := json.Unmarshal(raw, &out.Names); err != nil {
		return fmt.Errorf("variants.json: %w", err)
	}
	if len(out.Names) == 0 {
		return fmt.Errorf("variants.json: empty catalog")
	}
	for _, n := range out.Names {
		if n == "" {
			return fmt.Errorf("variants.json: empty name")
		}
	}
	return nil
}

func loadUpgrades(path string, out *UpgradeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []UpgradeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("upgrades.json: %w", err)
	}
	if len(defs) == 0 {
		return fmt.Errorf("upgrades.json: empty catalog")
	}
	out.ByID = map[string]UpgradeDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("upgrades.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("upgrades.json: duplicate id %s", d.ID)
		}
		if d.MaxLevel <= 0 || d.BaseCost <= 0 || d.CostMultiplier <= 1 {
			return fmt.Errorf("upgrades.json: %s: bad level/cost parameters", d.ID)
		}
		out.ByID[d.ID] = d
	}

	ids := make([]string, 0, len(out.ByID))
	for id := range out.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.IDs = ids
	return nil
}
