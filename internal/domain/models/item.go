package models

import "time"

// Item is the minted content a proposal points at (a recipe NFT). Items are
// owned by the content flow; voting only reads them and flips IsWeeklyWinner.
type Item struct {
	TokenID        uint64    `json:"tokenId"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	MetadataURI    string    `json:"metadataUri,omitempty"`
	IsWeeklyWinner bool      `json:"isWeeklyWinner"`
	CreatedAt      time.Time `json:"createdAt"`
}
