package entities

// ReviewWork is a queued request to review a whole game.
type ReviewWork struct {
	Id            string
	ClientId      string
	Side          string
	Difficulty    string
	Pgn           string
	Depth         int
	ReceiptHandle string
}
