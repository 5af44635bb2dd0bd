package chain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BlockHeight is a dense, monotonic block height; 0 is genesis.
type BlockHeight = uint64

// BlockHash is the opaque canonical key for chain-state queries.
type BlockHash []byte

func (h BlockHash) String() string {
	return fmt.Sprintf("0x%x", []byte(h))
}

// BlockTimestamp is milliseconds since the Unix epoch, extracted from
// the block's timestamp extrinsic (spec.md §3). A block lacking this
// extrinsic fails with a Fatal, non-retried error (spec.md §7).
type BlockTimestamp = uint64

// ExtrinsicID is "<height>-<index>", unpadded (spec.md §3/GLOSSARY).
func ExtrinsicID(height BlockHeight, index int) string {
	return fmt.Sprintf("%d-%d", height, index)
}

// EventIdx is "<height>-<index>", unpadded (spec.md §3/GLOSSARY).
func EventIdx(height BlockHeight, index int) string {
	return fmt.Sprintf("%d-%d", height, index)
}

// Transaction is one extrinsic projected into block_stream.
type Transaction struct {
	ExtrinsicID   string
	ExtrinsicHash string
	Signer        string
	CallModule    string
	CallFunction  string
	Status        string // "unknown" as decoded by substratenode; success/failure is not derived
}

// Event is one runtime event projected into block_stream, attributes
// kept as a decoded JSON-shaped map (spec.md §9: "tagged-variant event
// types decoded once from the JSON attributes column").
type Event struct {
	EventIdx    string
	ExtrinsicID string
	ModuleID    string
	EventID     string
	Attributes  map[string]interface{}
}

// Attr fetches a string attribute, returning ok=false if absent or not
// a string — used by every per-network event strategy (spec.md §4.3,
// §4.5) when reading a transfer's from/to/amount fields.
func (e Event) Attr(key string) (string, bool) {
	v, ok := e.Attributes[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// CanonicalBlock is one row of block_stream (spec.md §3).
type CanonicalBlock struct {
	Height       BlockHeight
	Hash         BlockHash
	Timestamp    BlockTimestamp
	Transactions []Transaction
	Events       []Event
	Addresses    []string
	Version      uint64
}

// AssetVerification is the verification status of an Asset row.
type AssetVerification string

const (
	Verified  AssetVerification = "verified"
	Unknown   AssetVerification = "unknown"
	Malicious AssetVerification = "malicious"
)

// AssetType distinguishes the chain's native token from everything else.
type AssetType string

const (
	AssetNative AssetType = "native"
	AssetToken  AssetType = "token"
)

// Asset is a row of the assets dictionary (spec.md §3), primary key
// (Network, Contract).
type Asset struct {
	Network           Network
	Symbol            string
	Contract          string
	Verified          AssetVerification
	Name              string
	Type              AssetType
	Decimals          int32
	FirstSeenBlock    BlockHeight
	FirstSeenTS       BlockTimestamp
	Notes             string
	LastUpdated       uint64 // ms since epoch, the replacing-merge version
}

// IsNative reports whether this asset is the chain's reserved native
// contract ("native"), which per spec.md §3/§8 never triggers a token
// row elsewhere.
func (a Asset) IsNative() bool {
	return a.Contract == NativeContract
}

// BalanceTransfer is a row of balance_transfers (spec.md §3), primary
// key (ExtrinsicID, EventIdx), version = BlockHeight.
type BalanceTransfer struct {
	ExtrinsicID    string
	EventIdx       string
	BlockHeight    BlockHeight
	BlockTimestamp BlockTimestamp
	From           string
	To             string
	Asset          string // symbol
	AssetContract  string
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	Version        uint64
}

// Balances is the {free, reserved, staked, total} shape returned by
// NodeClient.balances_at (spec.md §4.1) and stored per balance_series
// snapshot.
type Balances struct {
	Free     decimal.Decimal
	Reserved decimal.Decimal
	Staked   decimal.Decimal
	Total    decimal.Decimal
}

// BalanceSnapshot is a row of balance_series (spec.md §3).
type BalanceSnapshot struct {
	PeriodStart        uint64 // ms since epoch
	PeriodEnd          uint64
	BlockHeight        BlockHeight
	Address            string
	Asset              string
	AssetContract      string
	Free               decimal.Decimal
	Reserved           decimal.Decimal
	Staked             decimal.Decimal
	Total              decimal.Decimal
	DeltaFree          decimal.Decimal
	DeltaReserved      decimal.Decimal
	DeltaStaked        decimal.Decimal
	DeltaTotal         decimal.Decimal
	PercentChangeTotal decimal.NullDecimal
	HasPrevious        bool
	Version            uint64
}
