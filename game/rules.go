package game

type Rules interface {
	MinPlayers() int
	MaxPlayers() int
	HandSize(players int) int
	Jokers(players int) int
}
