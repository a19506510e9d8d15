package kvstore

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/xxxsen/docshare/internal/model"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("kvstore: cbor encoder init failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("kvstore: cbor decoder init failed: " + err.Error())
	}
}

// shareRecord is the on-disk form of a share link. It carries the password
// hash, which model.ShareLink hides from JSON.
type shareRecord struct {
	ID                 string `cbor:"id"`
	Token              string `cbor:"token"`
	DocumentID         string `cbor:"document_id"`
	OwnerID            string `cbor:"owner_id"`
	AccessLevel        string `cbor:"access_level"`
	State              int    `cbor:"state"`
	MaxViews           *int   `cbor:"max_views,omitempty"`
	ViewCount          int    `cbor:"view_count"`
	PasswordHash       string `cbor:"password_hash,omitempty"`
	RecipientEmailHint string `cbor:"recipient_email_hint,omitempty"`
	CreatedAt          int64  `cbor:"created_at"`
	ExpiresAt          int64  `cbor:"expires_at"`
}

func encodeShare(link *model.ShareLink) ([]byte, error) {
	return encMode.Marshal(shareRecord{
		ID:                 link.ID,
		Token:              link.Token,
		DocumentID:         link.DocumentID,
		OwnerID:            link.OwnerID,
		AccessLevel:        string(link.AccessLevel),
		State:              link.State,
		MaxViews:           link.MaxViews,
		ViewCount:          link.ViewCount,
		PasswordHash:       link.PasswordHash,
		RecipientEmailHint: link.RecipientEmailHint,
		CreatedAt:          link.CreatedAt,
		ExpiresAt:          link.ExpiresAt,
	})
}

func decodeShare(data []byte) (*model.ShareLink, error) {
	var rec shareRecord
	if err := decMode.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &model.ShareLink{
		ID:                 rec.ID,
		Token:              rec.Token,
		DocumentID:         rec.DocumentID,
		OwnerID:            rec.OwnerID,
		AccessLevel:        model.AccessLevel(rec.AccessLevel),
		State:              rec.State,
		MaxViews:           rec.MaxViews,
		ViewCount:          rec.ViewCount,
		PasswordHash:       rec.PasswordHash,
		RecipientEmailHint: rec.RecipientEmailHint,
		CreatedAt:          rec.CreatedAt,
		ExpiresAt:          rec.ExpiresAt,
	}, nil
}
