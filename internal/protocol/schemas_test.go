package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	actSchema := compile("act.schema.json")
	resultSchema := compile("result.schema.json")
	stateSchema := compile("state.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"web"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"shop_1",
	  "params":{
	    "tick_interval_ms":250,
	    "customer_interval_ms":12000,
	    "auction_interval_min_ms":60000,
	    "auction_interval_max_ms":120000,
	    "auction_duration_ms":25000,
	    "propagation_time_base_ms":45000,
	    "mutation_chance":0.03,
	    "starting_gp":50
	  },
	  "catalogs":{
	    "plants":{"digest":"deadbeef","count":12},
	    "customers":{"digest":"deadbeef","count":8},
	    "sellers":{"digest":"deadbeef","count":6},
	    "variants":{"digest":"deadbeef","count":10},
	    "upgrades":{"digest":"deadbeef","count":5}
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "id":"c1",
	  "action":"INSPECT",
	  "probe":"uv"
	}`), &act)
	validate(actSchema, act)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "protocol_version":"1.0",
	  "ref":"c1",
	  "ok":true,
	  "discovered":"rareVariant",
	  "message":"Inspection revealed: rareVariant",
	  "tick":42
	}`), &result)
	validate(resultSchema, result)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "tick":42,
	  "now_ms":1700000000000,
	  "started":true,
	  "gp":75,
	  "total_earned":25,
	  "total_sold":1,
	  "inventory":[{
	    "instance_id":"p1",
	    "seed_id":"pothos_golden",
	    "name":"Golden Pothos",
	    "family":"Araceae",
	    "genus":"Epipremnum",
	    "species":"aureum",
	    "tags":["beginner","trailing"],
	    "traits":{"rarity":10,"demand":70,"care_difficulty":10,"propagation_speed":85,"health":92},
	    "estimated_value":14,
	    "discovered_flags":["healthy"],
	    "acquired_method":"starter"
	  }],
	  "display_slots":[{"id":"display-0"},{"id":"display-1"},{"id":"display-2"}],
	  "propagation_slots":[{"id":"prop-0","remaining_ms":0,"is_complete":false}],
	  "customer_remaining_ms":4500,
	  "upgrades":[{
	    "id":"displayExpansion",
	    "name":"Display Expansion",
	    "description":"Add another display slot.",
	    "level":0,
	    "max_level":5,
	    "next_cost":100
	  }],
	  "log":[{
	    "id":"l1",
	    "type":"sale",
	    "message":"Sam bought Golden Pothos for 25 GP",
	    "timestamp_ms":1700000000000,
	    "gp_change":25
	  }]
	}`), &state)
	validate(stateSchema, state)
}

func TestSchemas_RejectBadAct(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "act.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "id":"c1",
	  "action":"DANCE"
	}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatalf("expected unknown action to fail validation")
	}
}
