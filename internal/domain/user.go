package domain

import "time"

// StartingBalance is credited to every user on first login.
const StartingBalance = 10000.0

// User represents a casino player stored in the database.
// ID is the stable Telegram identifier.
type User struct {
	ID           int64
	Username     string
	Balance      float64
	RegisteredAt time.Time
}

// Transaction is an immutable ledger record. Amount is signed: positive for a
// win, negative for a lost stake. For any user the invariant
// balance == StartingBalance + sum(amounts) must hold at all times.
type Transaction struct {
	ID        int64
	UserID    int64
	Amount    float64
	GameType  string
	CreatedAt time.Time
}
