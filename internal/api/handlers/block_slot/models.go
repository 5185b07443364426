package block_slot

// BlockSlotRequest HTTP request model
type BlockSlotRequest struct {
	Blocked bool `json:"blocked"`
}
