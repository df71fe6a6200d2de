package events

// Events emitted by the token, trustee and sale contracts.
const (
	Transfer         = "Transfer"
	Approval         = "Approval"
	WhitelistUpdated = "WhitelistUpdated"
	TokensPurchased  = "TokensPurchased"
	WalletChanged    = "WalletChanged"
	PresaleAdded     = "PresaleAdded"
	TokensReclaimed  = "TokensReclaimed"
	Finalized        = "Finalized"
)
