package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeCatalog = "CATALOG"
	TypeState   = "STATE"
	TypeAct     = "ACT"
	TypeResult  = "RESULT"
)

// Action names accepted in ACT messages.
const (
	ActStart              = "START"
	ActReset              = "RESET"
	ActMoveToDisplay      = "MOVE_TO_DISPLAY"
	ActRemoveFromDisplay  = "REMOVE_FROM_DISPLAY"
	ActSendToPropagation  = "SEND_TO_PROPAGATION"
	ActCollectPropagation = "COLLECT_PROPAGATION"
	ActBuyAuction         = "BUY_AUCTION"
	ActPassAuction        = "PASS_AUCTION"
	ActInspect            = "INSPECT"
	ActBuyUpgrade         = "BUY_UPGRADE"
)

// Result codes for rejected actions.
const (
	CodeBadRequest    = "E_BAD_REQUEST"
	CodeInvalidTarget = "E_INVALID_TARGET"
	CodeNoResource    = "E_NO_RESOURCE"
	CodeConflict      = "E_CONFLICT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
