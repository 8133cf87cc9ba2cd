package models

import (
	"github.com/uptrace/bun"
)

// Role : single-slot role table entry.
// Exactly one row may exist per role name (minter, purchaser, settler);
// setting a role overwrites the slot. A missing row means the slot is unset
// and every privileged call for that role is rejected.
type Role struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	Name      string       `json:"name" bun:",unique,notnull"`
	UserID    int64        `json:"user_id" bun:",notnull"`
	User      *User        `json:"-" bun:"rel:belongs-to,join:user_id=id"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}
