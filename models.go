package calc

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Operation is a single recorded arithmetic operation
type Operation struct {
	bun.BaseModel `bun:"table:operation_history,alias:oph"`
	ID            int64     `bun:"id,pk,autoincrement" json:"-"`
	Name          string    `bun:"operation,notnull" json:"operation"`
	Num1          float64   `bun:"num1,notnull" json:"num1"`
	Num2          float64   `bun:"num2,notnull" json:"num2"`
	Result        float64   `bun:"result,notnull" json:"result"`
	UserID        int64     `bun:"user_id,notnull" json:"-"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	Timestamp     time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp" json:"timestamp"`
}
