// Package genesis maintains access to the simulation parameters that seed
// every new chain session.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the simulation parameters file.
type Genesis struct {
	Date          time.Time `json:"date"`
	ChainID       uint16    `json:"chain_id"`        // An unique id for this running instance.
	Difficulty    uint      `json:"difficulty"`      // Leading zero bits a block hash must carry at the start.
	TransPerBlock uint16    `json:"trans_per_block"` // The maximum number of transactions that can be in a block.
	MineBudget    uint64    `json:"mine_budget"`     // Default attempt budget for one mining run, 0 is unbounded.

	ExpectedBlockSeconds uint64  `json:"expected_block_seconds"` // Target seconds between blocks for retargeting.
	RetargetWindow       int     `json:"retarget_window"`        // Number of blocks per retarget epoch.
	MinAdjust            float64 `json:"min_adjust"`             // Lower clamp on one retarget.
	MaxAdjust            float64 `json:"max_adjust"`             // Upper clamp on one retarget.

	SafeDepth int `json:"safe_depth"` // Confirmations before a block is treated as settled.
}

// =============================================================================

// Load opens and consumes the default genesis file.
func Load() (Genesis, error) {
	path := "zblock/genesis.json"
	return LoadFromFile(path)
}

// LoadFromFile opens and consumes the specified genesis file.
func LoadFromFile(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
