package fork

// Level describes what a confirmation count buys in practice. The table
// mirrors the classroom guidance on when a payment should be trusted.
type Level struct {
	Confirmations  int    `json:"confirmations"`
	Grade          string `json:"grade"`
	Description    string `json:"description"`
	RecommendedFor string `json:"recommended_for"`
}

var levels = []Level{
	{0, "none", "transaction is still in the pending pool, not on chain", "do not accept"},
	{1, "minimal", "included in the latest block, a short fork can still drop it", "trivial amounts only"},
	{2, "low", "two blocks of work on top", "small payments"},
	{3, "medium", "three blocks of work on top", "ordinary payments"},
	{6, "high", "the six block rule, reversal needs majority hash power", "large payments, exchange deposits"},
	{12, "very high", "a dozen blocks of work on top", "institutional settlement"},
}

// Safety returns the highest level the confirmation count qualifies for.
func Safety(confirmations int) Level {
	level := levels[0]
	for _, l := range levels {
		if confirmations >= l.Confirmations {
			level = l
		}
	}

	return level
}
