package entities

type MoveLog struct {
	Bucket  string `dynamodbav:"bucket" json:"bucket"`
	Uci     string `dynamodbav:"uci,omitempty" json:"uci,omitempty"`
	DeltaCp *int   `dynamodbav:"deltaCp,omitempty" json:"deltaCp,omitempty"`
}

// GameLogEntry is one finished game. Entries are append-only.
type GameLogEntry struct {
	GameId     string    `dynamodbav:"gameId" json:"gameId,omitempty"`
	ClientId   string    `dynamodbav:"clientId" json:"clientId"`
	Mode       string    `dynamodbav:"mode" json:"mode"`
	Difficulty string    `dynamodbav:"difficulty" json:"difficulty"`
	StartedAt  string    `dynamodbav:"startedAt" json:"startedAt"`
	Result     string    `dynamodbav:"result" json:"result"`
	Moves      []MoveLog `dynamodbav:"moves" json:"moves"`
}
