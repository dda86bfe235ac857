package model

import "time"

// WalletLink binds a Steam account to the wallet identity that proved control of it.
type WalletLink struct {
	SteamID  string    `json:"steam_id"`
	Pubkey   Identity  `json:"pubkey"`
	LinkedAt time.Time `json:"linked_at"`
}
