package event

import "time"

// Entity identifiers are physics body handles carried as plain integers so
// this package stays free of world and physics imports.

type PlayerJoined struct {
	PlayerID  uint64
	SessionID uint64
}

type PlayerLeft struct {
	PlayerID  uint64
	SessionID uint64
}

type EnemySpawned struct {
	EnemyID uint64
	Name    string
	Health  int
}

type EnemyDamaged struct {
	EnemyID  uint64
	PlayerID uint64
	Damage   int
	Health   int
}

type EnemyDefeated struct {
	EnemyID  uint64
	PlayerID uint64
}

type ChatPosted struct {
	PlayerID uint64
	Message  string
	SentAt   time.Time
}
