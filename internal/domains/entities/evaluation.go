package entities

// EvaluationRecord is the classification of one played move.
type EvaluationRecord struct {
	Fen         string
	Uci         string
	Bucket      string
	Label       string
	Explanation string
	Rule        string
	RawDeltaCp  int
	DeltaCp     int
	BestCp      int
	UserCp      int
	BestMoveSan string
	BestMoveUci string
	Depth       int
}

// BestMove is the engine's suggestion for a position. MatePlies is set when
// the engine sees a forced mate; positive means the side to move mates.
type BestMove struct {
	Fen       string
	San       string
	Uci       string
	Found     bool
	MatePlies *int
	ScoreCp   int
}

// MoveOutcome is the position reached after applying a move.
type MoveOutcome struct {
	Fen        string
	Turn       string
	IsGameOver bool
	Result     string
	Method     string
}
