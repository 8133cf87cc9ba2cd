package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User : principal model. SMEs, investors, clients, the platform wallet and
// the role-holding operators are all users.
type User struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	Login     string       `json:"login" bun:",unique,notnull"`
	Password  string       `json:"-" bun:",notnull"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}
