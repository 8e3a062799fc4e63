// Package cliutil holds small helpers shared by cmd/bamboo's
// subcommands: an exit-code carrier and the hex-friendly JSON view of an
// entry.
package cliutil

import (
	"encoding/hex"
	"fmt"

	"github.com/pietgeursen/bamboo-go/entry"
)

// ExitError carries a process exit code out of run() so main can set it
// after any deferred cleanup has run.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("bamboo: exited with code %d", e.Code)
}

// EntryView is the JSON-friendly projection of a decoded entry, hex
// encoding its binary fields the way `bamboo show` prints them.
type EntryView struct {
	IsEndOfFeed    bool   `json:"isEndOfFeed"`
	Author         string `json:"author"`
	LogID          uint64 `json:"logId"`
	SequenceNumber uint64 `json:"sequenceNumber"`
	BackLink       string `json:"backLink,omitempty"`
	LipmaaLink     string `json:"lipmaaLink,omitempty"`
	PayloadSize    uint64 `json:"payloadSize"`
	PayloadHash    string `json:"payloadHash"`
	Signature      string `json:"signature,omitempty"`
}

// NewEntryView projects a decoded entry into its JSON view.
func NewEntryView(e entry.Entry) EntryView {
	v := EntryView{
		IsEndOfFeed:    e.IsEndOfFeed,
		Author:         hex.EncodeToString(e.Author),
		LogID:          e.LogID,
		SequenceNumber: e.SeqNum,
		PayloadSize:    e.PayloadSize,
		PayloadHash:    hex.EncodeToString(e.PayloadHash.Digest),
	}
	if e.Backlink != nil {
		v.BackLink = hex.EncodeToString(e.Backlink.Digest)
	}
	if e.LipmaaLink != nil {
		v.LipmaaLink = hex.EncodeToString(e.LipmaaLink.Digest)
	}
	if e.Sig != nil {
		v.Signature = hex.EncodeToString(e.Sig[:])
	}
	return v
}
